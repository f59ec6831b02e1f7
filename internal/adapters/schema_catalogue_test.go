package adapters

import (
	"errors"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCatalogueFetchedOnce(t *testing.T) {
	dir := writeModules(t, map[string]string{
		"openconfig-interfaces": interfacesModule,
		"ietf-interfaces":       ietfInterfacesModule,
	})
	decoder := NewXMLDecoder()
	device := NewDirectoryDispatcher(dir, decoder)
	catalogue := NewSchemaCatalogueAdapter(device, decoder)

	for _, id := range []string{"openconfig-interfaces", "ietf-interfaces", "missing", "openconfig-interfaces"} {
		_, _, err := catalogue.ResolveSchema(t.Context(), id)
		require.NoError(t, err)
	}
	listed, err := catalogue.ListSchemas(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, listed.Len())
	assert.Equal(t, 1, device.Requests["catalogue"])
	assert.Equal(t, 3, device.Requests["get-schema"])
}

func TestSchemaCatalogueResolveFound(t *testing.T) {
	dir := writeModules(t, map[string]string{"openconfig-interfaces": interfacesModule})
	decoder := NewXMLDecoder()
	catalogue := NewSchemaCatalogueAdapter(NewDirectoryDispatcher(dir, decoder), decoder)

	content, ok, err := catalogue.ResolveSchema(t.Context(), "openconfig-interfaces")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "openconfig-interfaces", content.Identifier())
	assert.Equal(t, "http://openconfig.net/yang/interfaces", content.Descriptor.Namespace)
	assert.Equal(t, "yang", content.Descriptor.Format)
	assert.Equal(t, "2023-02-06", content.Descriptor.Version)
	assert.Equal(t, interfacesModule, content.Text)
}

func TestSchemaCatalogueNotFoundSkipsContentRequest(t *testing.T) {
	dir := writeModules(t, map[string]string{"openconfig-interfaces": interfacesModule})
	decoder := NewXMLDecoder()
	device := NewDirectoryDispatcher(dir, decoder)
	catalogue := NewSchemaCatalogueAdapter(device, decoder)

	for _, id := range []string{"openconfig-extensions", "OPENCONFIG-INTERFACES", "openconfig"} {
		content, ok, err := catalogue.ResolveSchema(t.Context(), id)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, content.Text)
	}
	assert.Equal(t, 0, device.Requests["get-schema"])
}

func TestSchemaCatalogueProtocolError(t *testing.T) {
	stub := &stubDispatcher{err: errors.New("connection reset")}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	_, err := catalogue.ListSchemas(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "protocol error")
}

func TestSchemaCatalogueRPCError(t *testing.T) {
	stub := &stubDispatcher{replies: [][]byte{[]byte(
		`<rpc-reply><rpc-error><error-tag>access-denied</error-tag>` +
			`<error-message>not allowed</error-message></rpc-error></rpc-reply>`)}}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	_, err := catalogue.ListSchemas(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access-denied: not allowed")
}

func TestSchemaCatalogueMissingDecoder(t *testing.T) {
	stub := &stubDispatcher{}
	catalogue := NewSchemaCatalogueAdapter(stub, nil)

	_, err := catalogue.ListSchemas(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "decoder")
	assert.Empty(t, stub.requests, "no request should be sent without a decoder")
}

func TestSchemaCatalogueUnexpectedStructure(t *testing.T) {
	stub := &stubDispatcher{replies: [][]byte{[]byte(`<rpc-reply><data><other/></data></rpc-reply>`)}}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	_, err := catalogue.ListSchemas(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "netconf-state/schemas")
}

func TestSchemaCatalogueGetSchemaRequest(t *testing.T) {
	stub := &stubDispatcher{replies: [][]byte{
		[]byte(`<rpc-reply><data><netconf-state><schemas>` +
			`<schema><identifier>ietf-interfaces</identifier><version>2018-02-20</version>` +
			`<format>ncm:yang</format><namespace>urn:x</namespace></schema>` +
			`</schemas></netconf-state></data></rpc-reply>`),
		[]byte(`<rpc-reply><data>module ietf-interfaces {}</data></rpc-reply>`),
	}}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	content, ok, err := catalogue.ResolveSchema(t.Context(), "ietf-interfaces")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "module ietf-interfaces {}\n", content.Text)
	assert.Equal(t, "yang", content.Descriptor.Format)

	require.Len(t, stub.requests, 2)
	assert.True(t, strings.HasPrefix(stub.requests[0], "<get>"))
	assert.Contains(t, stub.requests[1], "<identifier>ietf-interfaces</identifier>")
	assert.Contains(t, stub.requests[1], "<version>2018-02-20</version>")
	assert.Contains(t, stub.requests[1], "<format>yang</format>")
}

func TestSchemaCatalogueEmptyContent(t *testing.T) {
	stub := &stubDispatcher{replies: [][]byte{
		[]byte(`<rpc-reply><data><netconf-state><schemas><schema><identifier>a</identifier></schema></schemas></netconf-state></data></rpc-reply>`),
		[]byte(`<rpc-reply><data>   </data></rpc-reply>`),
	}}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	_, ok, err := catalogue.ResolveSchema(t.Context(), "a")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "empty")
}

func TestSchemaCatalogueTruncatedSchemaReply(t *testing.T) {
	stub := &stubDispatcher{replies: [][]byte{
		[]byte(`<rpc-reply><data><netconf-state><schemas>` +
			`<schema><identifier>openconfig-interfaces</identifier><format>yang</format></schema>` +
			`</schemas></netconf-state></data></rpc-reply>`),
		[]byte(`<rpc-reply><data>module x {`),
	}}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	_, ok, err := catalogue.ResolveSchema(t.Context(), "openconfig-interfaces")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "decoding error: get-schema openconfig-interfaces reply is malformed")
}

func TestSchemaCatalogueMalformedCatalogueReply(t *testing.T) {
	stub := &stubDispatcher{replies: [][]byte{[]byte(`<rpc-reply><data><netconf-state>`)}}
	catalogue := NewSchemaCatalogueAdapter(stub, NewXMLDecoder())

	_, err := catalogue.ListSchemas(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "catalogue query reply is malformed")
}
