package receiptno

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sony/sonyflake"
)

const (
	prefix       = "REC"
	suffixLength = 8
)

// Generator mints receipt numbers of the form REC + 8 uppercase base-36
// characters on top of a sonyflake node. Collisions are improbable but not
// impossible (the suffix keeps only the low bits of the snowflake); the
// receipts collection's unique index is the real guarantee, and callers treat
// a duplicate-key insert as retryable.
type Generator struct {
	node *sonyflake.Sonyflake
}

// NewGenerator creates and returns a new Generator.
func NewGenerator(machineId uint16) (*Generator, error) {
	t, _ := time.Parse("2006-01-02", "2020-01-01")
	settings := sonyflake.Settings{
		StartTime: t,
		MachineID: func() (uint16, error) { // machineId is captured by the closure
			return machineId, nil
		},
	}
	sf := sonyflake.NewSonyflake(settings)
	if sf == nil {
		return nil, fmt.Errorf("sonyflake not created")
	}
	return &Generator{node: sf}, nil
}

// Next mints a new receipt number.
func (g *Generator) Next() (string, error) {
	id, err := g.node.NextID()
	if err != nil {
		return "", err
	}
	return Format(id), nil
}

// Format renders a raw id as a receipt number: base-36, uppercased, truncated
// to the low 8 characters and zero-padded on the left.
func Format(id uint64) string {
	encoded := strings.ToUpper(strconv.FormatUint(id, 36))
	if len(encoded) < suffixLength {
		encoded = strings.Repeat("0", suffixLength-len(encoded)) + encoded
	}
	return prefix + encoded[len(encoded)-suffixLength:]
}
