package testutil

import "fmt"

// BSPYAML returns a board-support-package state file shaped like the one the
// toolchain generates for a fresh domain.
func BSPYAML(osName, processor string) string {
	return fmt.Sprintf(`os: %[1]s
os_info:
  %[1]s:
    path: /opt/Xilinx/Vitis/2024.1/data/embeddedsw/lib/bsp/%[1]s_v9_1
    version: "9.1"
os_config:
  %[1]s:
    %[1]s_stdin:
      name: %[1]s_stdin
      permission: read_write
      type: UNDEFINED
      value: ps7_uart_0
      default: None
    %[1]s_stdout:
      name: %[1]s_stdout
      permission: read_write
      type: UNDEFINED
      value: ps7_uart_0
      default: None
proc: %[2]s
proc_config:
  %[2]s:
    proc_extra_compiler_flags:
      name: proc_extra_compiler_flags
      permission: read_write
      type: STRING
      value: ' -g -Wall -Wextra -fno-tree-loop-distribute-patterns'
lib_info:
  xiltimer:
    path: /opt/Xilinx/Vitis/2024.1/data/embeddedsw/lib/sw_services/xiltimer_v1_4
    version: "1.4"
lib_config:
  xiltimer:
    XILTIMER_en_interval_timer:
      name: XILTIMER_en_interval_timer
      permission: read_write
      type: BOOL
      value: false
drv_info:
  ps7_uart_0:
    driver: uartps
    ver: "3.13"
    path: /opt/Xilinx/Vitis/2024.1/data/embeddedsw/XilinxProcessorIPLib/drivers/uartps_v3_13
  ps7_uart_1:
    driver: uartps
    ver: "3.13"
    path: /opt/Xilinx/Vitis/2024.1/data/embeddedsw/XilinxProcessorIPLib/drivers/uartps_v3_13
  ps7_gpio_0:
    driver: gpiops
    ver: "3.12"
    path: /opt/Xilinx/Vitis/2024.1/data/embeddedsw/XilinxProcessorIPLib/drivers/gpiops_v3_12
toolchain_file: /opt/Xilinx/Vitis/2024.1/data/embeddedsw/cmake/toolchainfiles/cortexa9_toolchain.cmake
config: default
`, osName, processor)
}

// UserConfigCMake mirrors the generated per-application user configuration.
const UserConfigCMake = `# Generated user configuration
set(USER_COMPILE_SOURCES
"main.c"
)
# Add any compile definitions here
set(USER_COMPILE_DEFINITIONS
)
set(USER_UNDEFINED_SYMBOLS
)
set(USER_INCLUDE_DIRECTORIES
)
set(USER_COMPILE_WARNINGS_ALL -Wall)
set(USER_COMPILE_WARNINGS_EXTRA -Wextra)
set(USER_COMPILE_WARNINGS_AS_ERRORS )
set(USER_COMPILE_WARNINGS_CHECK_SYNTAX_ONLY )
set(USER_COMPILE_WARNINGS_PEDANTIC )
set(USER_COMPILE_WARNINGS_PEDANTIC_AS_ERRORS )
set(USER_COMPILE_WARNINGS_INHIBIT_ALL )
set(USER_COMPILE_OPTIMIZATION_LEVEL -O0)
set(USER_COMPILE_OPTIMIZATION_OTHER_FLAGS )
set(USER_COMPILE_DEBUG_LEVEL -g3)
set(USER_COMPILE_DEBUG_OTHER_FLAGS )
set(USER_COMPILE_VERBOSE )
set(USER_COMPILE_ANSI )
set(USER_COMPILE_OTHER_FLAGS )
set(USER_LINK_NO_START_FILES )
set(USER_LINK_NO_DEFAULT_LIBS )
set(USER_LINK_NO_STDLIB )
set(USER_LINK_OMIT_ALL_SYMBOL_INFO )
set(USER_LINK_LIBRARIES
)
set(USER_LINK_DIRECTORIES
)
set(USER_LINKER_SCRIPT "${CMAKE_SOURCE_DIR}/lscript.ld")
set(USER_LINK_OTHER_FLAGS )
`

// CMakeLists is the generated application build description.
const CMakeLists = `cmake_minimum_required(VERSION 3.15)
include(${CMAKE_CURRENT_SOURCE_DIR}/UserConfig.cmake)
project(app)
aux_source_directory(${CMAKE_SOURCE_DIR} _sources)
add_executable(${APP_NAME}.elf ${_sources})
`
