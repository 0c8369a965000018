package sensor

import (
	"fmt"

	"github.com/google/uuid"
)

// IDPool hands out node identities. Preset ids registered with the alert
// backend are used in order per kind, then random ones.
type IDPool struct {
	presets map[Kind][]uuid.UUID
	next    map[Kind]int
}

// NewIDPool parses the preset ids for masters and slaves.
func NewIDPool(masters, slaves []string) (*IDPool, error) {
	p := &IDPool{
		presets: make(map[Kind][]uuid.UUID),
		next:    make(map[Kind]int),
	}
	for kind, raw := range map[Kind][]string{KindMaster: masters, KindSlave: slaves} {
		for _, s := range raw {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%s id %q: %w", kind, s, err)
			}
			p.presets[kind] = append(p.presets[kind], id)
		}
	}
	return p, nil
}

// Next returns the next identity for kind.
func (p *IDPool) Next(kind Kind) uuid.UUID {
	i := p.next[kind]
	if i < len(p.presets[kind]) {
		p.next[kind] = i + 1
		return p.presets[kind][i]
	}
	return uuid.New()
}
