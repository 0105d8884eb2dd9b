package schema

import (
	"context"
	"testing"
)

func TestConfigValidator(t *testing.T) {
	validator, err := NewConfigValidator()
	if err != nil {
		t.Fatalf("NewConfigValidator returned error: %v", err)
	}

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "empty", doc: `{}`},
		{name: "full", doc: `{"remote_url":"https://github.com/org/iot.git","checkout_dir":"/tmp/repo","exec_root":"/app","depth":1,"profile":"app","entrypoint":["python","main.py"],"ports":[8000,8001],"prune_stale":false,"lock":true,"log_level":"info","log_format":"json"}`},
		{name: "unknown key", doc: `{"branch":"main"}`, wantErr: true},
		{name: "bad profile", doc: `{"profile":"worker"}`, wantErr: true},
		{name: "negative depth", doc: `{"depth":-1}`, wantErr: true},
		{name: "port range", doc: `{"ports":[70000]}`, wantErr: true},
		{name: "empty entrypoint", doc: `{"entrypoint":[]}`, wantErr: true},
		{name: "not json", doc: `remote_url: x`, wantErr: true},
		{name: "fractional depth", doc: `{"depth":1.5}`, wantErr: true},
		{name: "large port number", doc: `{"ports":[65535]}`},
		{name: "trailing document", doc: `{} {}`, wantErr: true},
		{name: "not an object", doc: `["app"]`, wantErr: true},
	}

	for _, tt := range tests {
		err := validator.Validate(context.Background(), []byte(tt.doc))
		if tt.wantErr && err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
	}
}
