package adapters

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"yangstage/internal/ports"
	"yangstage/internal/types"
)

const netconfMonitoringNS = "urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"

const catalogueRequest = `<get><filter type="subtree">` +
	`<netconf-state xmlns="` + netconfMonitoringNS + `"><schemas/></netconf-state>` +
	`</filter></get>`

// SchemaCatalogueAdapter fetches the device schema list once and serves
// lookups and get-schema requests from it.  One instance covers one run.
type SchemaCatalogueAdapter struct {
	Dispatcher ports.DispatcherPort
	Decoder    ports.DecoderPort

	catalogue *types.SchemaCatalogue
}

func NewSchemaCatalogueAdapter(dispatcher ports.DispatcherPort, decoder ports.DecoderPort) *SchemaCatalogueAdapter {
	return &SchemaCatalogueAdapter{
		Dispatcher: dispatcher,
		Decoder:    decoder,
	}
}

// ListSchemas returns the memoized catalogue, querying the device on the
// first call only.
func (a *SchemaCatalogueAdapter) ListSchemas(ctx context.Context) (types.SchemaCatalogue, error) {
	if a.catalogue != nil {
		return *a.catalogue, nil
	}
	reply, err := a.request(ctx, []byte(catalogueRequest), "catalogue query")
	if err != nil {
		return types.SchemaCatalogue{}, err
	}
	data := replyData(reply)
	schemas := data.Lookup("netconf-state", "schemas")
	if schemas == nil {
		return types.SchemaCatalogue{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: catalogue reply has no netconf-state/schemas element")
	}

	var descriptors []types.SchemaDescriptor
	for _, entry := range schemas.ChildrenNamed("schema") {
		desc := types.SchemaDescriptor{
			Identifier: entry.ChildText("identifier"),
			Version:    entry.ChildText("version"),
			Namespace:  entry.ChildText("namespace"),
			Format:     stripPrefix(entry.ChildText("format")),
		}
		if desc.Identifier == "" {
			log.Ctx(ctx).Debug().Msg("skipping catalogue entry without identifier")
			continue
		}
		descriptors = append(descriptors, desc)
	}
	catalogue := types.NewSchemaCatalogue(descriptors)
	a.catalogue = &catalogue
	log.Ctx(ctx).Debug().Int("schemas", catalogue.Len()).Msg("device catalogue loaded")
	return catalogue, nil
}

// ResolveSchema looks identifier up in the catalogue and, on a match,
// retrieves its text with get-schema.
func (a *SchemaCatalogueAdapter) ResolveSchema(ctx context.Context, identifier string) (types.SchemaContent, bool, error) {
	catalogue, err := a.ListSchemas(ctx)
	if err != nil {
		return types.SchemaContent{}, false, err
	}
	desc, ok := catalogue.Lookup(identifier)
	if !ok {
		return types.SchemaContent{}, false, nil
	}

	request, err := getSchemaRequest(desc)
	if err != nil {
		return types.SchemaContent{}, false, err
	}
	reply, err := a.request(ctx, request, "get-schema "+identifier)
	if err != nil {
		return types.SchemaContent{}, false, err
	}
	data := replyData(reply)
	if data == nil {
		return types.SchemaContent{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: get-schema reply for " + identifier + " has no data element")
	}
	text := strings.TrimSpace(data.Text)
	if text == "" {
		return types.SchemaContent{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: get-schema reply for " + identifier + " is empty")
	}
	log.Ctx(ctx).Debug().Str("schema", identifier).Int("bytes", len(text)).Msg("schema fetched")
	return types.SchemaContent{Descriptor: desc, Text: text + "\n"}, true, nil
}

func (a *SchemaCatalogueAdapter) request(ctx context.Context, payload []byte, what string) (*types.Node, error) {
	if a.Decoder == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("response decoder is not configured; an XML decoder is required to read device replies")
	}
	if a.Dispatcher == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("device dispatcher is not configured")
	}
	raw, err := a.Dispatcher.Dispatch(ctx, payload)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: " + what + " failed").
			WithCause(err)
	}
	reply, err := a.Decoder.Decode(raw)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("decoding error: " + what + " reply is malformed").
			WithCause(err)
	}
	if msg := rpcErrorMessage(reply); msg != "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: " + what + " rejected by device: " + msg)
	}
	return reply, nil
}

// replyData returns the <data> element of a reply, accepting replies
// rooted at either rpc-reply or data.
func replyData(reply *types.Node) *types.Node {
	if reply == nil {
		return nil
	}
	if reply.Name == "data" {
		return reply
	}
	return reply.Child("data")
}

func getSchemaRequest(desc types.SchemaDescriptor) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<get-schema xmlns="` + netconfMonitoringNS + `"><identifier>`)
	if err := xml.EscapeText(&buf, []byte(desc.Identifier)); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to encode schema identifier").
			WithCause(err)
	}
	buf.WriteString(`</identifier>`)
	if desc.Version != "" {
		buf.WriteString(`<version>`)
		_ = xml.EscapeText(&buf, []byte(desc.Version))
		buf.WriteString(`</version>`)
	}
	buf.WriteString(`<format>yang</format></get-schema>`)
	return buf.Bytes(), nil
}

// stripPrefix drops an XML prefix from identity values like "ncm:yang".
func stripPrefix(value string) string {
	if i := strings.LastIndex(value, ":"); i >= 0 {
		return value[i+1:]
	}
	return value
}

var _ ports.SchemaCataloguePort = (*SchemaCatalogueAdapter)(nil)
