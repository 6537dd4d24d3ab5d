package grpccas

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stevedylandev/cid-proof/storage"
	"github.com/stevedylandev/cid-proof/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "grpc",
		Description: "gRPC CAS client (talks to a cidproofd daemon)",
		Usage:       casregistry.UsageCLI,
		Keys:        []string{"target", "timeout", "max_msg_bytes"},
		Open: func(cfg map[string]string) (storage.CAS, func() error, error) {
			target := strings.TrimSpace(cfg["target"])
			if target == "" {
				return nil, nil, fmt.Errorf("grpccas: missing %q", "target")
			}
			var opts DialOptions
			if v := cfg["max_msg_bytes"]; v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, nil, fmt.Errorf("grpccas: max_msg_bytes: %w", err)
				}
				opts.MaxMsgBytes = n
			}
			var timeout time.Duration
			if v := cfg["timeout"]; v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return nil, nil, fmt.Errorf("grpccas: timeout: %w", err)
				}
				timeout = d
			}

			client, err := Dial(target, opts)
			if err != nil {
				return nil, nil, err
			}
			client.Timeout = timeout
			return client, client.Close, nil
		},
	})
}
