package progress

// Parser decodes progress message lines into Records.
//
// A Parser keeps one Record and reuses it for every line: fields that a line
// does not set keep the value from an earlier line. A step-info message
// followed by a delta therefore still reports the step-info Field3. This
// matches how the engine's own sample handlers behave and is relied on by
// Tracker only through Kind and the fields each Kind defines.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	rec          Record
	rawCharCodes bool
}

// NewParser creates a Parser. Only WithRawCharCodes affects parsing.
func NewParser(opts ...Option) *Parser {
	cfg := newConfig(opts)
	return &Parser{rawCharCodes: cfg.rawCharCodes}
}

// Decode parses one line and returns the updated record.
//
// The line is a sequence of "<tag>: <value>" fields separated by single
// spaces, with tags '1' to '4' in order. Decoding stops as soon as the
// record is complete for its kind: after field 2 for kinds 2 and 3, after
// field 3 for kind 1, after field 4 otherwise. Running out of input after
// at least one field is also a complete decode.
//
// On failure the returned record is the parser's current cell, which may
// have been partially updated by the failing line.
func (p *Parser) Decode(line string) (Record, error) {
	if line == "" {
		return p.rec, ErrEmptyMessage
	}

	pos := 0
	for pos < len(line) {
		tag := line[pos]
		// Tag, ':' and ' '. Separators are not validated.
		pos += 3

		switch tag {
		case '1':
			if pos >= len(line) || !isDigit(line[pos]) {
				return p.rec, ErrBlankRecord
			}
			p.rec.Kind = Kind(line[pos] - '0')
			pos++
		case '2':
			p.rec.Field2, pos = p.scanField(line, pos)
			if p.rec.Kind == KindDelta || p.rec.Kind == KindTotalAdjust {
				return p.rec, nil
			}
		case '3':
			p.rec.Field3, pos = p.scanField(line, pos)
			if p.rec.Kind == KindStepInfo {
				return p.rec, nil
			}
		case '4':
			p.rec.Field4, _ = p.scanField(line, pos)
			return p.rec, nil
		default:
			return p.rec, ErrUnknownField
		}

		// Space between fields.
		pos++
	}

	return p.rec, nil
}

// Record returns the parser's current record without decoding anything.
func (p *Parser) Record() Record {
	return p.rec
}

// scanField reads an integer running from pos to the next space or the end
// of line. It returns the value and the index of the terminator.
func (p *Parser) scanField(line string, pos int) (int, int) {
	value := 0
	for pos < len(line) && line[pos] != ' ' {
		c := int(line[pos])
		if !p.rawCharCodes {
			c -= '0'
		}
		value = value*10 + c
		pos++
	}
	return value, pos
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
