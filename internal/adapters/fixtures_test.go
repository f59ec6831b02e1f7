package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const interfacesModule = `module openconfig-interfaces {
  yang-version "1";
  namespace "http://openconfig.net/yang/interfaces";
  prefix "oc-if";

  import ietf-interfaces { prefix ietf-if; }
  import openconfig-extensions { prefix oc-ext; }

  revision "2023-02-06" {
    description "Fixes & updates";
  }
}
`

const ietfInterfacesModule = `module ietf-interfaces {
  namespace "urn:ietf:params:xml:ns:yang:ietf-interfaces";
  prefix if;

  import ietf-yang-types {
    prefix yang;
  }
}
`

const yangTypesModule = `module ietf-yang-types {
  namespace "urn:ietf:params:xml:ns:yang:ietf-yang-types";
  prefix yang;
}
`

func writeModules(t *testing.T, modules map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range modules {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yang"), []byte(text), 0644))
	}
	return dir
}

type stubDispatcher struct {
	replies  [][]byte
	err      error
	requests []string
}

func (s *stubDispatcher) Dispatch(_ context.Context, request []byte) ([]byte, error) {
	s.requests = append(s.requests, string(request))
	if s.err != nil {
		return nil, s.err
	}
	if len(s.replies) == 0 {
		return nil, nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func (s *stubDispatcher) Close() error {
	return nil
}
