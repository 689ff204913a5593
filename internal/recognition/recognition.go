// Package recognition decodes speech-recognizer responses into the phrase
// handed to the dice calculator.
//
// The recognizer answers with XML listing candidate transcriptions:
//
//	<recognitionResults success="1">
//	  <variant confidence="0.05">д 8 + d 6</variant>
//	  <variant confidence="0">8 + d 6</variant>
//	</recognitionResults>
package recognition

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ErrNotRecognized is returned when the recognizer reports failure or offers
// no variants.
var ErrNotRecognized = errors.New("speech was not recognized")

// ErrMalformed wraps every decoding failure returned by Parse.
var ErrMalformed = errors.New("malformed recognition results")

// Variant is one candidate transcription.
type Variant struct {
	Confidence float64 `xml:"confidence,attr"`
	Text       string  `xml:",chardata"`
}

// Results is a decoded recognizer response.
type Results struct {
	XMLName  xml.Name  `xml:"recognitionResults"`
	Success  int       `xml:"success,attr"`
	Variants []Variant `xml:"variant"`
}

// Parse decodes a recognizer response. Documents declaring a non-UTF-8
// encoding (e.g. windows-1251) are transcoded on the fly.
//
// Postcondition: Returns the decoded Results or an error wrapping ErrMalformed.
func Parse(r io.Reader) (Results, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var res Results
	if err := dec.Decode(&res); err != nil {
		return Results{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return res, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Best returns the recognizer's preferred transcription, which is the first
// variant in document order.
//
// Postcondition: Returns ErrNotRecognized when Success is 0 or no variant exists.
func (r Results) Best() (string, error) {
	if r.Success == 0 || len(r.Variants) == 0 {
		return "", ErrNotRecognized
	}
	return strings.TrimSpace(r.Variants[0].Text), nil
}

// ByConfidence returns a copy of the variants ordered by descending
// confidence; ties keep document order.
func (r Results) ByConfidence() []Variant {
	out := make([]Variant, len(r.Variants))
	copy(out, r.Variants)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
