package vitiscli

import (
	"encoding/json"
	"path/filepath"
	"text/template"
)

// py renders a Go value as a Python literal. JSON string, number and list
// syntax is valid Python; booleans need translating.
func py(v any) (string, error) {
	switch b := v.(type) {
	case bool:
		if b {
			return "True", nil
		}
		return "False", nil
	case string:
		v = filepath.ToSlash(b)
	}
	out, err := json.Marshal(v)
	return string(out), err
}

var scripts = template.Must(template.New("vitiscli").Funcs(template.FuncMap{"py": py}).Parse(`
{{- define "header" -}}
import vitis

client = vitis.create_client()
client.set_workspace(path={{ py .Workspace }})
{{ end -}}

{{- define "footer" -}}
vitis.dispose()
{{ end -}}

{{- define "create_platform" -}}
{{ template "header" . }}
platform = client.create_platform_component(
    name={{ py .Name }},
    hw_design={{ py .XSA }},
    os={{ py .OS }},
    cpu={{ py .CPU }},
    domain_name={{ py .Domain }},
    no_boot_bsp={{ py .NoBootBSP }},
)
{{- if not .NoBootBSP }}
platform.generate_boot_bsp(target_processor="")
{{- end }}
{{ template "footer" . }}
{{- end -}}

{{- define "create_domain" -}}
{{ template "header" . }}
platform = client.get_component(name={{ py .Platform }})
platform.add_domain(
    cpu={{ py .CPU }},
    os={{ py .OS }},
    name={{ py .Name }},
    display_name={{ py .DisplayName }},
)
{{ template "footer" . }}
{{- end -}}

{{- define "configure_domain" -}}
{{ template "header" . }}
platform = client.get_component(name={{ py .Platform }})
domain = platform.get_domain(name={{ py .Domain }})
{{- range .Libraries }}
{{- if .Enabled }}
domain.set_lib(lib_name={{ py .Name }}, path={{ py .Path }})
{{- else }}
domain.remove_lib(lib_name={{ py .Name }})
{{- end }}
{{- end }}
{{- range .Drivers }}
domain.update_path(option="DRIVER", name={{ py .Name }}, new_path={{ py .Path }})
{{- end }}
{{ template "footer" . }}
{{- end -}}

{{- define "regenerate_domain" -}}
{{ template "header" . }}
platform = client.get_component(name={{ py .Platform }})
domain = platform.get_domain(name={{ py .Domain }})
domain.regenerate()
{{ template "footer" . }}
{{- end -}}

{{- define "create_application" -}}
{{ template "header" . }}
client.create_app_component(
    name={{ py .Name }},
    platform={{ py .Platform }},
    domain={{ py .Domain }},
{{- if .Template }}
    template={{ py .Template }},
{{- end }}
)
{{ template "footer" . }}
{{- end -}}

{{- define "build_component" -}}
{{ template "header" . }}
component = client.get_component(name={{ py .Name }})
status = component.build()
vitis.dispose()
if status is False:
    raise SystemExit(1)
{{- end -}}
`))
