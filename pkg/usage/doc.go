/*
Package usage defines the values that flow through the usage report pipeline:
the (code, file) usage instance, the deduplicating set the scanner produces,
and the error kinds every stage reports.

All three error kinds are fatal to a run. Callers inspect them with errors.As:

	var ioErr *usage.IOError
	if errors.As(err, &ioErr) {
		fmt.Println("unreadable:", ioErr.Path)
	}
*/
package usage
