package testutil

// Call is one recorded toolchain or build invocation.
type Call struct {
	Op     string
	Entity string
}

func (c Call) String() string {
	return c.Op + " " + c.Entity
}
