package adapters

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"yangstage/internal/ports"
)

var (
	namespaceStmt = regexp.MustCompile(`(?m)^\s*namespace\s+"?([^";\s]+)"?\s*;`)
	revisionStmt  = regexp.MustCompile(`(?m)^\s*revision\s+"?(\d{4}-\d{2}-\d{2})"?`)
)

// DirectoryDispatcher answers catalogue and get-schema requests from
// *.yang files in Dir.  A file named name@revision.yang is advertised as
// module name with that version.  Dir is scanned on the first request;
// later changes to it are not seen by the same instance.
type DirectoryDispatcher struct {
	Dir     string
	Decoder ports.DecoderPort

	// Requests counts dispatched requests by kind ("catalogue", "get-schema").
	Requests map[string]int

	modules []directoryModule
	scanned bool
}

func NewDirectoryDispatcher(dir string, decoder ports.DecoderPort) *DirectoryDispatcher {
	return &DirectoryDispatcher{Dir: dir, Decoder: decoder, Requests: map[string]int{}}
}

type directoryModule struct {
	identifier string
	version    string
	namespace  string
	path       string
}

func (d *DirectoryDispatcher) Dispatch(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	node, err := d.Decoder.Decode(request)
	if err != nil {
		return nil, err
	}
	modules, err := d.catalogue()
	if err != nil {
		return nil, err
	}
	switch node.Name {
	case "get":
		d.Requests["catalogue"]++
		return catalogueReply(modules)
	case "get-schema":
		d.Requests["get-schema"]++
		identifier := node.ChildText("identifier")
		version := node.ChildText("version")
		for _, mod := range modules {
			if mod.identifier != identifier {
				continue
			}
			if version != "" && mod.version != version {
				continue
			}
			data, err := os.ReadFile(mod.path)
			if err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to read schema file: " + mod.path).
					WithCause(err)
			}
			return contentReply(data)
		}
		return errorReply("invalid-value", "no schema exists for identifier "+identifier), nil
	default:
		return errorReply("operation-not-supported", "unsupported operation "+node.Name), nil
	}
}

func (d *DirectoryDispatcher) Close() error {
	return nil
}

// catalogue returns the modules found in Dir, scanning it once.  A failed
// scan is retried on the next request.
func (d *DirectoryDispatcher) catalogue() ([]directoryModule, error) {
	if d.scanned {
		return d.modules, nil
	}
	modules, err := d.scan()
	if err != nil {
		return nil, err
	}
	d.modules = modules
	d.scanned = true
	return modules, nil
}

func (d *DirectoryDispatcher) scan() ([]directoryModule, error) {
	paths, err := findModuleFiles(d.Dir)
	if err != nil {
		return nil, err
	}
	var modules []directoryModule
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read schema file: " + path).
				WithCause(err)
		}
		name := strings.TrimSuffix(filepath.Base(path), moduleFileSuffix)
		mod := directoryModule{identifier: name, path: path}
		if at := strings.Index(name, "@"); at >= 0 {
			mod.identifier = name[:at]
			mod.version = name[at+1:]
		} else if m := revisionStmt.FindSubmatch(data); m != nil {
			mod.version = string(m[1])
		}
		if m := namespaceStmt.FindSubmatch(data); m != nil {
			mod.namespace = string(m[1])
		}
		modules = append(modules, mod)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].identifier != modules[j].identifier {
			return modules[i].identifier < modules[j].identifier
		}
		return newerRevision(modules[i].version, modules[j].version)
	})
	return modules, nil
}

func catalogueReply(modules []directoryModule) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><data>`)
	buf.WriteString(`<netconf-state xmlns="` + netconfMonitoringNS + `"><schemas>`)
	for _, mod := range modules {
		buf.WriteString("<schema>")
		writeElement(&buf, "identifier", mod.identifier)
		writeElement(&buf, "version", mod.version)
		writeElement(&buf, "format", "yang")
		writeElement(&buf, "namespace", mod.namespace)
		writeElement(&buf, "location", "NETCONF")
		buf.WriteString("</schema>")
	}
	buf.WriteString(`</schemas></netconf-state></data></rpc-reply>`)
	return buf.Bytes(), nil
}

func contentReply(text []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">`)
	buf.WriteString(`<data xmlns="` + netconfMonitoringNS + `">`)
	if err := xml.EscapeText(&buf, text); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode schema text").
			WithCause(err)
	}
	buf.WriteString(`</data></rpc-reply>`)
	return buf.Bytes(), nil
}

func errorReply(tag string, message string) []byte {
	return []byte(fmt.Sprintf(`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">`+
		`<rpc-error><error-type>application</error-type><error-tag>%s</error-tag>`+
		`<error-severity>error</error-severity><error-message>%s</error-message></rpc-error></rpc-reply>`,
		escapeString(tag), escapeString(message)))
}

func writeElement(buf *bytes.Buffer, name string, value string) {
	buf.WriteString("<" + name + ">")
	buf.WriteString(escapeString(value))
	buf.WriteString("</" + name + ">")
}

func escapeString(value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.String()
}

var _ ports.DispatcherPort = (*DirectoryDispatcher)(nil)
