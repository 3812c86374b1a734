package activity

import (
	"bytes"
	"encoding/json"

	perr "devquest/internal/platform/errors"
)

// EncodeData writes d as a flat object tagged with its kind, e.g. {"type":"push","commits":3}
func EncodeData(d Data) (json.RawMessage, error) {
	if d == nil {
		return json.RawMessage("null"), nil
	}
	body, err := json.Marshal(d)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "activity: encode data")
	}
	tag, _ := json.Marshal(d.Kind())

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if rest := bytes.TrimSpace(body[1:]); len(rest) > 1 {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// DecodeData reads a tagged data envelope back into its variant
func DecodeData(raw []byte) (Data, error) {
	var head struct {
		Type DataKind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "activity: decode data tag")
	}

	var (
		d   Data
		err error
	)
	switch head.Type {
	case KindPush:
		d, err = decodeAs[Push](raw)
	case KindPullRequest:
		d, err = decodeAs[PullRequest](raw)
	case KindIssue:
		d, err = decodeAs[Issue](raw)
	case KindComment:
		d, err = decodeAs[Comment](raw)
	case KindReview:
		d, err = decodeAs[Review](raw)
	case KindReviewThread:
		d, err = decodeAs[ReviewThread](raw)
	case KindReviewComment:
		d, err = decodeAs[ReviewComment](raw)
	case KindBranch:
		d, err = decodeAs[Branch](raw)
	case KindTag:
		d, err = decodeAs[Tag](raw)
	default:
		return nil, perr.Newf(perr.ErrorCodeJSON, "activity: unknown data type %q", head.Type)
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "activity: decode %s data", head.Type)
	}
	return d, nil
}

func decodeAs[T Data](raw []byte) (Data, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
