package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func Int(v int) *int          { return &v }
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }

// Strings returns a pointer to a copy of v.
func Strings(v ...string) *[]string {
	out := append([]string{}, v...)
	return &out
}
