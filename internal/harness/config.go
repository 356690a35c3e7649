// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package harness

import (
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/faaq"
)

// Variant selects the queue implementation under test.
type Variant string

const (
	VariantSegmented Variant = "segmented"
	VariantFlat      Variant = "flat"
)

// Default workload.
const (
	DefaultProducers = 4
	DefaultConsumers = 4
	DefaultItems     = 10000
	DefaultTimeout   = 30 * time.Second

	// flatHeadroom multiplies the item count when sizing a flat array.
	// Positions lost to poisoning consume capacity as well.
	flatHeadroom = 8

	// maxSeq bounds items per producer so values pack into one uint64.
	maxSeq = 1 << 32
)

var errConfig = errors.New("harness: invalid config")

// Config describes one stress round.
type Config struct {
	Variant     Variant
	SegmentSize int // Segmented only
	Capacity    int // Flat only, 0 sizes the array from the workload
	Producers   int
	Consumers   int
	Items       int // Per producer
	Timeout     time.Duration
}

// DefaultConfig returns a segmented workload with default sizes.
func DefaultConfig() Config {
	return Config{
		Variant:     VariantSegmented,
		SegmentSize: faaq.DefaultSegmentSize,
		Producers:   DefaultProducers,
		Consumers:   DefaultConsumers,
		Items:       DefaultItems,
		Timeout:     DefaultTimeout,
	}
}

// Total returns the number of elements produced in one round.
func (c Config) Total() int {
	return c.Producers * c.Items
}

// WithDefaults returns c with a zero Timeout and, for the flat variant, a
// zero Capacity replaced by values derived from the workload.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Variant == VariantFlat && c.Capacity == 0 {
		c.Capacity = max(c.Total()*flatHeadroom, faaq.DefaultFlatCapacity)
	}
	return c
}

// Validate rejects impossible workloads. A zero Capacity or Timeout is
// accepted; WithDefaults fills them in.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantSegmented:
		if c.SegmentSize < 1 {
			return fmt.Errorf("%w: segment size %d, must be >= 1", errConfig, c.SegmentSize)
		}
	case VariantFlat:
		if c.Capacity < 0 {
			return fmt.Errorf("%w: capacity %d, must be >= 0", errConfig, c.Capacity)
		}
	default:
		return fmt.Errorf("%w: unknown variant %q", errConfig, c.Variant)
	}
	if c.Producers < 1 || c.Consumers < 1 {
		return fmt.Errorf("%w: need at least one producer and one consumer", errConfig)
	}
	if c.Items < 1 || uint64(c.Items) >= maxSeq {
		return fmt.Errorf("%w: items per producer %d out of range", errConfig, c.Items)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %v, must be >= 0", errConfig, c.Timeout)
	}
	return nil
}

// IsConfigError reports whether err came from Config.Validate.
func IsConfigError(err error) bool {
	return errors.Is(err, errConfig)
}

// build creates the queue under test.
func (c Config) build() faaq.Queue[uint64] {
	if c.Variant == VariantFlat {
		return faaq.Build[uint64](faaq.New().Flat(c.Capacity))
	}
	return faaq.Build[uint64](faaq.New().SegmentSize(c.SegmentSize))
}
