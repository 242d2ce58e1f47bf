package bserve

import (
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

// ResponseType tags how the metadata of a [Response] is to be interpreted.
type ResponseType uint16

const (
	// TypeText renders the metadata as a plain text body.
	TypeText ResponseType = 1
	// TypeStaticFile renders the file at the path held in the metadata.
	TypeStaticFile ResponseType = 2
)

func (t ResponseType) known() bool { return t == TypeText || t == TypeStaticFile }

func (t ResponseType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeStaticFile:
		return "static_file"
	default:
		return "unknown"
	}
}

const (
	textContentType = "text/plain; charset=utf-8"
	jsonContentType = "application/json"
	structuredMeta  = "JSON"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is what a handler produces. It is immutable once built.
type Response struct {
	typ        ResponseType
	meta       string
	structured []byte
}

// NewResponse builds a plain text or static file response from its type tag and metadata.
func NewResponse(typ ResponseType, meta string) Response {
	return Response{typ: typ, meta: meta}
}

// NewStructured builds a response from a native value. The value is serialized right away, a value
// that cannot be serialized fails here rather than when rendering.
func NewStructured(typ ResponseType, native any) (Response, error) {
	data, err := json.Marshal(native)
	if err != nil {
		return Response{}, errors.Wrapf(err, "convert %T to a structured value", native)
	}

	return Response{typ: typ, meta: structuredMeta, structured: data}, nil
}

// NewRawStructured builds a structured response from an already serialized value.
func NewRawStructured(typ ResponseType, raw []byte) (Response, error) {
	if !gjson.ValidBytes(raw) {
		return Response{}, errors.Newf("raw structured value is not valid JSON: %.32q", raw)
	}

	return Response{typ: typ, meta: structuredMeta, structured: append([]byte(nil), raw...)}, nil
}

// Text builds a plain text response.
func Text(s string) Response { return NewResponse(TypeText, s) }

// StaticFile builds a response that serves the file at path.
func StaticFile(path string) Response { return NewResponse(TypeStaticFile, path) }

// JSON builds a structured response.
func JSON(v any) (Response, error) { return NewStructured(TypeText, v) }

func (r Response) Type() ResponseType { return r.typ }
func (r Response) Meta() string       { return r.meta }
func (r Response) IsStructured() bool { return r.structured != nil }

// Structured returns the serialized structured payload, if any.
func (r Response) Structured() []byte { return r.structured }

// AsResponse converts what host code returned into a response. Strings and bytes become plain
// text, anything that is not a response, or a response with an unknown type tag, is an
// [ErrInvocation].
func AsResponse(v any) (Response, error) {
	switch vt := v.(type) {
	case Response:
		return checkType(vt)
	case *Response:
		if vt == nil {
			return Response{}, errors.Wrap(ErrInvocation, "handler returned a nil response")
		}

		return checkType(*vt)
	case string:
		return Text(vt), nil
	case []byte:
		return Text(string(vt)), nil
	default:
		return Response{}, errors.Wrapf(ErrInvocation, "handler returned %T, not a response", v)
	}
}

func checkType(r Response) (Response, error) {
	if !r.typ.known() {
		return Response{}, errors.Wrapf(ErrInvocation, "response has unknown type tag %d", uint16(r.typ))
	}

	return r, nil
}

// render writes the response. A structured payload always wins over a static file tag.
func (r Response) render(w http.ResponseWriter, req *http.Request) error {
	switch {
	case r.structured != nil:
		w.Header().Set("Content-Type", jsonContentType)
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write(r.structured); err != nil {
			return dispatchErrorf(ErrRender, "write structured body: %v", err)
		}
	case r.typ == TypeStaticFile:
		return serveFile(w, req, r.meta)
	case r.typ == TypeText:
		w.Header().Set("Content-Type", textContentType)
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(r.meta)); err != nil {
			return dispatchErrorf(ErrRender, "write text body: %v", err)
		}
	default:
		return dispatchErrorf(ErrInvocation, "unknown response type tag %d", uint16(r.typ))
	}

	return nil
}

// serveFile streams the file and lets the http package handle conditional and range requests.
func serveFile(w http.ResponseWriter, req *http.Request, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return dispatchErrorf(ErrRender, "open static file: %v", err)
	}

	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return dispatchErrorf(ErrRender, "stat static file: %v", err)
	}

	if fi.IsDir() {
		return dispatchErrorf(ErrRender, "static file %q is a directory", path)
	}

	http.ServeContent(w, req, fi.Name(), fi.ModTime(), f)

	return nil
}
