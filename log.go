package procrt

import (
	"os"

	"github.com/sirupsen/logrus"
)

// diag is the runtime's diagnostic logger. Every emitted line goes out
// prefixed "rt: " (spec.md §6: "Human-readable lines on standard output
// prefixed 'rt:'. Not a compatibility surface."), through a real leveled
// logger rather than a bare fmt.Printf the way the teacher's Dump()
// debugging helper does it.
var diag = newDiagLogger()

func newDiagLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&rtFormatter{inner: &logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	}})
	return l
}

// rtFormatter prepends "rt: " to every formatted line, keeping the literal
// diagnostic text required by spec.md §8's end-to-end scenarios (e.g.
// "DEAD SEND", "no schedulable processes") unchanged in the line's msg
// field.
type rtFormatter struct {
	inner logrus.Formatter
}

func (f *rtFormatter) Format(e *logrus.Entry) ([]byte, error) {
	line, err := f.inner.Format(e)
	if err != nil {
		return nil, err
	}
	return append([]byte("rt: "), line...), nil
}
