package farmstore

// must and ensure panic on error. Inside a transaction the panic is turned
// back into an error by safelyCall.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}
