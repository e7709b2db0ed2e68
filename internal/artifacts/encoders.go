package artifacts

import (
	"encoding/json"
	"sort"
)

// UnseenCode is the sentinel for category values the encoder never saw
// during training. A column whose learned vocabulary legitimately maps
// a value to -1 would be indistinguishable from unseen; the training
// export never emits negative codes, so the sentinel is safe here.
const UnseenCode = -1

// LabelEncoder maps one categorical column's values to the integer
// codes the model was trained on. The code of a value is its index in
// the exported class list.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder over an ordered class list.
func NewLabelEncoder(classes []string) *LabelEncoder {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return &LabelEncoder{classes: classes, index: idx}
}

// Code returns the learned code for value, or UnseenCode, false when
// the value was not in the training vocabulary.
func (e *LabelEncoder) Code(value string) (int, bool) {
	if i, ok := e.index[value]; ok {
		return i, true
	}
	return UnseenCode, false
}

// Classes returns the ordered training vocabulary.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// EncoderSet holds the encoders for one artifact file, keyed by column
// name.
type EncoderSet map[string]*LabelEncoder

// Columns returns the encoded column names in sorted order, so callers
// iterating the set behave deterministically.
func (s EncoderSet) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// UnmarshalJSON reads the exported shape: column name to ordered class
// list.
func (s *EncoderSet) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(EncoderSet, len(raw))
	for col, classes := range raw {
		out[col] = NewLabelEncoder(classes)
	}
	*s = out
	return nil
}

// MarshalJSON writes the same shape UnmarshalJSON reads.
func (s EncoderSet) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]string, len(s))
	for col, enc := range s {
		raw[col] = enc.Classes()
	}
	return json.Marshal(raw)
}
