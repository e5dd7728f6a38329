package facility

import (
	"encoding/csv"
	"errors"
	"syscall"

	"github.com/rotisserie/eris"
)

// ErrSinkClosed means the consumer stopped reading the output. It is an
// expected way for a run to end, not a failure.
var ErrSinkClosed = eris.New("facility: output closed by reader")

// IsBrokenPipe reports whether err comes from writing to a closed pipe.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

func sinkError(err error, action string) error {
	if IsBrokenPipe(err) {
		return ErrSinkClosed
	}
	return eris.Wrapf(err, "facility: %s", action)
}

func flush(w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		return sinkError(err, "flush output")
	}
	return nil
}
