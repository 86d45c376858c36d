// Package extract recovers typed records from free-form generated text.
//
// Every recovery tries the same chain and the first attempt that yields a JSON object
// decodable into the target wins:
//
//  1. the first fenced block tagged json;
//  2. the first object starting with the expected root key, up to its matching brace;
//  3. the whole text.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/spigell/profilematch/internal/apperrors"
)

// ReportRootKey is the key the report stage object starts with.
const ReportRootKey = "summary"

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)```")

type attempt struct {
	name string
	find func(raw, rootKey string) (string, error)
}

var attempts = []attempt{
	{name: "fenced block", find: fencedBlock},
	{name: "embedded object", find: embeddedObject},
	{name: "whole text", find: wholeText},
}

// Extract recovers the report record from raw. The returned record is never nil. When no
// attempt succeeds the record is degraded (empty summary and matches, RawText set) and the
// error is an *apperrors.ExtractionError the caller should treat as a warning.
func Extract(raw string) (*Record, error) {
	rec := &Record{}
	notes, err := recoverInto(raw, ReportRootKey, rec)
	if err != nil {
		return degraded(raw), err
	}
	rec.Coerced = notes

	if rec.Summary == nil {
		rec.Summary = map[string]any{}
	}
	if rec.Matches == nil {
		rec.Matches = []CandidateMatch{}
	}
	for i := range rec.Matches {
		if rec.Matches[i].MatchingTeams == nil {
			rec.Matches[i].MatchingTeams = []TeamScore{}
		}
	}

	return rec, nil
}

// recoverInto runs the attempt chain and stores the first usable object in out, which must
// be a pointer. Every attempt decodes into a fresh value, so a rejected attempt leaves
// nothing behind. The returned notes list values that were reset while decoding.
func recoverInto(raw, rootKey string, out any) ([]string, error) {
	target := reflect.ValueOf(out).Elem()
	var failures []error

	for _, a := range attempts {
		candidate, err := a.find(raw, rootKey)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", a.name, err))
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", a.name, err))
			continue
		}
		if obj == nil {
			failures = append(failures, fmt.Errorf("%s: %w", a.name, errNotObject))
			continue
		}

		fresh := reflect.New(target.Type())
		notes, err := decode(obj, fresh.Interface())
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", a.name, err))
			continue
		}

		target.Set(fresh.Elem())
		return notes, nil
	}

	return nil, &apperrors.ExtractionError{Attempts: failures}
}

var (
	errNotFound  = errors.New("not found")
	errUnclosed  = errors.New("object is not closed")
	errNotObject = errors.New("not a JSON object")
)

func fencedBlock(raw, _ string) (string, error) {
	m := fencedJSON.FindStringSubmatch(raw)
	if m == nil {
		return "", errNotFound
	}
	return strings.TrimSpace(m[1]), nil
}

func embeddedObject(raw, rootKey string) (string, error) {
	re, err := regexp.Compile(`\{\s*"` + regexp.QuoteMeta(rootKey) + `"`)
	if err != nil {
		return "", err
	}

	loc := re.FindStringIndex(raw)
	if loc == nil {
		return "", errNotFound
	}

	end, ok := matchingBrace(raw, loc[0])
	if !ok {
		return "", errUnclosed
	}
	return raw[loc[0] : end+1], nil
}

func wholeText(raw, _ string) (string, error) {
	text := stripFence(raw)
	if text == "" {
		return "", errNotFound
	}
	return text, nil
}

// matchingBrace returns the index of the brace closing the object opened at start.
// Braces inside string literals are ignored.
func matchingBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}

// stripFence removes an untagged code fence wrapping the whole text.
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		if len(raw) >= 4 && strings.EqualFold(raw[:4], "json") {
			raw = raw[4:]
		}
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
