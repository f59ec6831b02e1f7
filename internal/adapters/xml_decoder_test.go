package adapters

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLDecoderBuildsTree(t *testing.T) {
	payload := []byte(`<?xml version="1.0"?>
<rpc-reply message-id="7" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
  <data>
    <netconf-state xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring">
      <schemas>
        <schema><identifier>a</identifier><format>ncm:yang</format></schema>
        <schema><identifier>b</identifier></schema>
      </schemas>
    </netconf-state>
  </data>
</rpc-reply>`)

	root, err := NewXMLDecoder().Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "rpc-reply", root.Name)
	assert.Equal(t, "7", root.Attrs["message-id"])

	schemas := root.Lookup("data", "netconf-state", "schemas").ChildrenNamed("schema")
	require.Len(t, schemas, 2)
	assert.Equal(t, "a", schemas[0].ChildText("identifier"))
	assert.Equal(t, "ncm:yang", schemas[0].ChildText("format"))
	assert.Equal(t, netconfMonitoringNS, root.Lookup("data", "netconf-state").Namespace)
}

func TestXMLDecoderUnescapesText(t *testing.T) {
	root, err := NewXMLDecoder().Decode([]byte(`<data>a &lt; b &amp;&#xA;c</data>`))
	require.NoError(t, err)
	assert.Equal(t, "a < b &\nc", root.Text)
}

func TestXMLDecoderErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: "   "},
		{name: "malformed", payload: "<data><open></data>"},
		{name: "truncated", payload: "<data><schemas>"},
		{name: "text only", payload: "module foo {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewXMLDecoder().Decode([]byte(tt.payload))
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
			assert.Contains(t, err.Error(), "decoding error")
		})
	}
}
