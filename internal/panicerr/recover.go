// Package panicerr converts panics and goroutine exits into error returns.
package panicerr

// Recover runs f in a new goroutine, waiting for it to finish; any panic or
// runtime.Goexit from f is returned as a non-nil error.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExitError(name, errch)
		defer recoverPanicError(name, errch)
		errch <- f()
	}()
	return <-errch
}
