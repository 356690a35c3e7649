// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package harness

import (
	"fmt"
	"io"
	"time"

	"code.hybscloud.com/faaq"
	"github.com/sugawarayuuta/sonnet"
)

// Report is the outcome of one round.
type Report struct {
	Round       int     `json:"round"`
	Variant     Variant `json:"variant"`
	SegmentSize int     `json:"segment_size,omitempty"`
	Capacity    int     `json:"capacity,omitempty"`
	Producers   int     `json:"producers"`
	Consumers   int     `json:"consumers"`
	Items       int     `json:"items"`
	Total       int     `json:"total"`

	Dequeued   int64 `json:"dequeued"`
	Missing    int64 `json:"missing"`
	Duplicates int64 `json:"duplicates"`
	OutOfRange int64 `json:"out_of_range"`
	OutOfOrder int64 `json:"out_of_order"`
	Extra      int64 `json:"extra"` // Dequeued after every value was seen

	ValidateError string `json:"validate_error,omitempty"`
	Failure       string `json:"failure,omitempty"`

	Stats     faaq.Stats    `json:"stats"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Passed    bool          `json:"passed"`
}

func (r *Report) ok() bool {
	return r.Failure == "" &&
		r.ValidateError == "" &&
		r.Missing == 0 &&
		r.Duplicates == 0 &&
		r.OutOfRange == 0 &&
		r.OutOfOrder == 0 &&
		r.Extra == 0
}

// Format selects how reports are written.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a -format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatAuto, FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", errConfig, s)
	}
}

// Resolve replaces FormatAuto with text on a terminal and JSON otherwise.
func (f Format) Resolve(isTerminal bool) Format {
	if f != FormatAuto {
		return f
	}
	if isTerminal {
		return FormatText
	}
	return FormatJSON
}

// Encode writes r to w as one JSON line or a short text block.
func Encode(w io.Writer, f Format, r Report) error {
	if f == FormatJSON {
		b, err := sonnet.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return err
	}

	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	shape := fmt.Sprintf("segment_size=%d", r.SegmentSize)
	if r.Variant == VariantFlat {
		shape = fmt.Sprintf("capacity=%d", r.Capacity)
	}
	if _, err := fmt.Fprintf(w, "round %d %s %s %s producers=%d consumers=%d items=%d dequeued=%d/%d elapsed=%v\n",
		r.Round, status, r.Variant, shape, r.Producers, r.Consumers, r.Items, r.Dequeued, r.Total, r.Elapsed.Round(time.Microsecond)); err != nil {
		return err
	}
	s := r.Stats
	if _, err := fmt.Fprintf(w, "  stats enq_idx=%d deq_idx=%d enqueue_retries=%d poisoned=%d empty_reads=%d segments=%d link_races=%d\n",
		s.EnqueueIndex, s.DequeueIndex, s.EnqueueRetries, s.PoisonedSlots, s.EmptyReads, s.SegmentsAllocated, s.SegmentLinkRaces); err != nil {
		return err
	}
	if r.Passed {
		return nil
	}
	if _, err := fmt.Fprintf(w, "  missing=%d duplicates=%d out_of_range=%d out_of_order=%d extra=%d\n",
		r.Missing, r.Duplicates, r.OutOfRange, r.OutOfOrder, r.Extra); err != nil {
		return err
	}
	for _, msg := range []string{r.Failure, r.ValidateError} {
		if msg == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}
