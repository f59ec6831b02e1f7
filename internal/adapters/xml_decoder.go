package adapters

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"yangstage/internal/ports"
	"yangstage/internal/types"
)

// XMLDecoder converts NETCONF replies into a types.Node tree.  Only the
// first top-level element is decoded.
type XMLDecoder struct{}

func NewXMLDecoder() XMLDecoder {
	return XMLDecoder{}
}

func (d XMLDecoder) Decode(payload []byte) (*types.Node, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: empty response payload")
	}
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	var stack []*types.Node
	var root *types.Node
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("decoding error: malformed XML response").
				WithCause(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &types.Node{Name: t.Name.Local, Namespace: t.Name.Space}
			for _, attr := range t.Attr {
				if node.Attrs == nil {
					node.Attrs = map[string]string{}
				}
				node.Attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return root, nil
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				current := stack[len(stack)-1]
				current.Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: response has no XML element")
	}
	if len(stack) > 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: unterminated element " + stack[len(stack)-1].Name)
	}
	return root, nil
}

// rpcErrorMessage returns the text of the first <rpc-error> in a reply,
// or "" when the reply carries none.
func rpcErrorMessage(reply *types.Node) string {
	rpcErr := reply.Child("rpc-error")
	if rpcErr == nil {
		return ""
	}
	parts := []string{}
	for _, name := range []string{"error-tag", "error-message"} {
		if text := rpcErr.ChildText(name); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "rpc-error"
	}
	return strings.Join(parts, ": ")
}

var _ ports.DecoderPort = XMLDecoder{}
