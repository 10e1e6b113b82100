package processor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackzampolin/postgen/internal/corpus"
)

// RawPost is one item of a raw upload. Items without text are skipped.
type RawPost struct {
	Text       string  `json:"text"`
	Engagement float64 `json:"engagement"`
}

// RawDocument is a decoded raw upload. Items keeps the original JSON of
// every element so the raw copy on disk keeps fields this package ignores.
type RawDocument struct {
	Items []json.RawMessage
	Posts []RawPost
}

// DecodeRaw parses a raw upload. The document must be a JSON array;
// anything else fails with *corpus.FormatError. Elements that are not
// objects, or whose text is not a string, decode to an empty RawPost.
func DecodeRaw(data []byte) (*RawDocument, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &corpus.FormatError{Err: fmt.Errorf("dataset must be a list of posts")}
		}
		return nil, &corpus.FormatError{Err: err}
	}
	if items == nil {
		return nil, &corpus.FormatError{Err: fmt.Errorf("dataset must be a list of posts")}
	}

	doc := &RawDocument{Items: items, Posts: make([]RawPost, len(items))}
	for i, item := range items {
		doc.Posts[i] = decodeRawPost(item)
	}
	return doc, nil
}

func decodeRawPost(item json.RawMessage) RawPost {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return RawPost{}
	}
	var p RawPost
	_ = json.Unmarshal(fields["text"], &p.Text)
	if err := json.Unmarshal(fields["engagement"], &p.Engagement); err != nil {
		p.Engagement = 0
	}
	return p
}
