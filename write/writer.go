package write

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type WriteSettings struct {
	DisplayWriters []Writer      // Where should the display be written. Nil (the default) avoids all display
	Interval       time.Duration // Minimum time between two rows written to a Displayer
}

// DefaultWriteSettings returns settings that write nothing. Solvers are
// quiet unless a writer is added.
func DefaultWriteSettings() *WriteSettings {
	return &WriteSettings{
		DisplayWriters: nil,
		Interval:       defaultInterval,
	}
}

type Type int

const (
	// Logger is a writer intended to save details of the solve for future
	// postprocessing. The data is saved as a csv and a row is written
	// every iteration of the solver
	Logger Type = iota

	// Displayer is a writer intended for human monitoring of the solve.
	// Writes only happen periodically, and an effort is made to align columns
	Displayer
)

type Writer struct {
	io.Writer
	T Type
}

type Value struct {
	Value   interface{}
	Heading string
}

type DataAdder interface {
	AppendWriteData([]*Value) []*Value
}

func writeHeader(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, "Beginning %s\n\n", title)
	return err
}

const headingInterval = 30
const defaultInterval time.Duration = 500 * time.Millisecond

// Display displays the iteration trace. Displayers only print at
// specific times, Loggers log at every iteration.
// Assumption is that headings don't change
type Display struct {
	displayValues []*Value

	headings []string
	values   []string

	maxLengths []int

	lastHeadingDisplay int
	lastValueDisplay   time.Time
	interval           time.Duration
	valuesPending      bool

	existsDisplayer bool
	existsLogger    bool

	writers []Writer

	dataAdders []DataAdder
}

// accumulateValues gets all of the values from the data adders and stores
// them in display
func (d *Display) accumulateValues() {
	d.displayValues = d.displayValues[:0]
	for _, add := range d.dataAdders {
		d.displayValues = add.AppendWriteData(d.displayValues)
	}
}

func NewDisplay() *Display {
	return &Display{}
}

// AddDataAdder adds a DataAdder to the list of values to be printed/logged.
// This should only be called during initialization
func (d *Display) AddDataAdder(dataAdders ...DataAdder) {
	d.dataAdders = append(d.dataAdders, dataAdders...)
}

// Init initializes the displays for the writers according to their Type
func (d *Display) Init(w *WriteSettings, title string) error {
	// settings so that headings and values are displayed on first iteration
	d.lastHeadingDisplay = headingInterval + 1
	d.existsDisplayer = false
	d.existsLogger = false
	d.valuesPending = false
	d.writers = nil

	if w == nil || len(w.DisplayWriters) == 0 {
		return nil
	}
	d.writers = w.DisplayWriters
	d.interval = w.Interval
	d.lastValueDisplay = time.Now().Add(-d.interval)

	d.accumulateValues()

	// get all of the headings
	d.headings = d.headings[:0]
	for _, dat := range d.displayValues {
		d.headings = append(d.headings, dat.Heading)
	}

	// Write the initial headers to all of the writers
	for _, w := range d.writers {
		if err := writeHeader(w, title); err != nil {
			return err
		}
		switch w.T {
		default:
			panic("display: unknown writer type")
		case Logger:
			d.existsLogger = true
			if err := writeCSV(w, d.headings); err != nil {
				return err
			}
		case Displayer:
			d.existsDisplayer = true
		}
	}
	return nil
}

// Iterate is the write action performed by display at every iteration
// of the solver, as set by the values in the Writers and dataAdders which
// were set during initialization
func (d *Display) Iterate() error {
	if len(d.writers) == 0 {
		return nil
	}

	var displayValues bool
	var displayHeadings bool

	if d.existsDisplayer {
		// Check if the values need to be displayed
		displayValues = d.shouldDisplayValues()
		if displayValues {
			d.lastValueDisplay = time.Now()
			d.lastHeadingDisplay++
		}

		displayHeadings = d.shouldDisplayHeadings()
		if displayHeadings {
			d.lastHeadingDisplay = 0
		}
		d.valuesPending = !displayValues
	}

	// only accumulate values if needed
	if d.existsLogger || displayValues || displayHeadings {
		d.collectValues()
	}
	if displayValues || displayHeadings {
		d.computeLengths()
	}

	for _, w := range d.writers {
		switch w.T {
		default:
			panic("display: unknown writer type")
		case Logger:
			if err := writeCSV(w, d.values); err != nil {
				return err
			}
		case Displayer:
			if displayHeadings {
				if _, err := w.Write([]byte("\n")); err != nil {
					return err
				}
				if err := writeAlignedStrings(w, d.headings, d.maxLengths); err != nil {
					return err
				}
			}
			if displayValues {
				if err := writeAlignedStrings(w, d.values, d.maxLengths); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Finish writes the most recent values to the Displayers if they were
// skipped by the throttle, so the final iterate is always shown
func (d *Display) Finish() error {
	if !d.existsDisplayer || !d.valuesPending {
		return nil
	}
	d.valuesPending = false
	d.collectValues()
	d.computeLengths()
	for _, w := range d.writers {
		if w.T != Displayer {
			continue
		}
		if err := writeAlignedStrings(w, d.values, d.maxLengths); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) collectValues() {
	d.accumulateValues()
	d.values = d.values[:0]
	for _, v := range d.displayValues {
		d.values = append(d.values, valueToString(v.Value))
	}
}

// computeLengths finds the max length of heading and value
func (d *Display) computeLengths() {
	d.maxLengths = d.maxLengths[:0]
	for i, v := range d.values {
		d.maxLengths = append(d.maxLengths, len(v))
		if len(d.headings[i]) > len(v) {
			d.maxLengths[i] = len(d.headings[i])
		}
	}
}

func (d *Display) shouldDisplayValues() bool {
	// Display values when enough time has elapsed since the last
	// display. This is to limit printing with really quick functions
	return time.Since(d.lastValueDisplay) >= d.interval
}

func (d *Display) shouldDisplayHeadings() bool {
	// Display headings again after a certain number of value printings
	return d.lastHeadingDisplay > headingInterval
}

func writeAlignedStrings(w io.Writer, strs []string, maxLengths []int) error {
	for i, str := range strs {
		s := str + strings.Repeat(" ", maxLengths[i]-len(str)) + "\t"
		_, err := w.Write([]byte(s))
		if err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("\n"))
	return err
}

// writeCSV writes a single comma separated row
func writeCSV(w io.Writer, values []string) error {
	_, err := io.WriteString(w, strings.Join(values, ",")+"\n")
	return err
}

func valueToString(v interface{}) string {
	switch t := v.(type) {
	case int:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%e", t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}
