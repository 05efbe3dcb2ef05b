// Package policyfile reads the lifecycle policy from YAML.
//
// Keys that are absent keep the value of services.DefaultPolicy. A present
// edges list replaces the default edges entirely. Unknown keys are errors.
package policyfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/core/domain/model/order"
	"orderlifecycle/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicy []byte

type document struct {
	CancelGracePeriod           *string     `yaml:"cancelGracePeriod"`
	CancellationAmountThreshold *string     `yaml:"cancellationAmountThreshold"`
	ElevatedRole                *string     `yaml:"elevatedRole"`
	Batch                       batchConfig `yaml:"batch"`
	Edges                       []edge      `yaml:"edges"`
}

type batchConfig struct {
	MaxSize     *int    `yaml:"maxSize"`
	Concurrency *int    `yaml:"concurrency"`
	ItemTimeout *string `yaml:"itemTimeout"`
}

type edge struct {
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	Precondition string `yaml:"precondition"`
	Reason       string `yaml:"reason"`
	RequiredRole string `yaml:"requiredRole"`
}

// Default returns the embedded policy.
func Default() (services.Policy, error) {
	return Parse(bytes.NewReader(defaultPolicy))
}

// Load reads the policy at path. An empty path yields Default.
func Load(path string) (services.Policy, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return services.Policy{}, fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()

	policy, err := Parse(f)
	if err != nil {
		return services.Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return policy, nil
}

// Parse decodes one YAML document and validates the scalar settings.
func Parse(r io.Reader) (services.Policy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return services.Policy{}, fmt.Errorf("decode policy: %w", err)
	}

	policy, err := doc.toPolicy()
	if err != nil {
		return services.Policy{}, err
	}
	if err = policy.Validate(); err != nil {
		return services.Policy{}, err
	}
	return policy, nil
}

func (d document) toPolicy() (services.Policy, error) {
	policy := services.DefaultPolicy()
	var errList []error

	if d.CancelGracePeriod != nil {
		v, err := time.ParseDuration(*d.CancelGracePeriod)
		errList = appendErr(errList, "cancelGracePeriod", err)
		policy.CancelGracePeriod = v
	}
	if d.CancellationAmountThreshold != nil {
		v, err := decimal.NewFromString(*d.CancellationAmountThreshold)
		errList = appendErr(errList, "cancellationAmountThreshold", err)
		policy.CancellationAmountThreshold = v
	}
	if d.ElevatedRole != nil {
		v, err := operator.ParseRole(*d.ElevatedRole)
		errList = appendErr(errList, "elevatedRole", err)
		policy.ElevatedRole = v
	}
	if d.Batch.MaxSize != nil {
		policy.MaxBatchSize = *d.Batch.MaxSize
	}
	if d.Batch.Concurrency != nil {
		policy.BatchConcurrency = *d.Batch.Concurrency
	}
	if d.Batch.ItemTimeout != nil {
		v, err := time.ParseDuration(*d.Batch.ItemTimeout)
		errList = appendErr(errList, "batch.itemTimeout", err)
		policy.ItemTimeout = v
	}

	if d.Edges != nil {
		policy.Edges = make([]services.EdgePolicy, 0, len(d.Edges))
		for i, e := range d.Edges {
			ep, err := e.toEdgePolicy()
			if err != nil {
				errList = append(errList, fmt.Errorf("edges[%d]: %w", i, err))
				continue
			}
			policy.Edges = append(policy.Edges, ep)
		}
	}

	if err := errors.Join(errList...); err != nil {
		return services.Policy{}, err
	}
	return policy, nil
}

func (e edge) toEdgePolicy() (services.EdgePolicy, error) {
	from, fromErr := order.ParseStatus(e.From)
	to, toErr := order.ParseStatus(e.To)

	var role operator.Role
	var roleErr error
	if e.RequiredRole != "" {
		role, roleErr = operator.ParseRole(e.RequiredRole)
	}

	if err := errors.Join(fromErr, toErr, roleErr); err != nil {
		return services.EdgePolicy{}, err
	}

	return services.EdgePolicy{
		From:         from,
		To:           to,
		Precondition: e.Precondition,
		Reason:       e.Reason,
		RequiredRole: role,
	}, nil
}

func appendErr(errList []error, key string, err error) []error {
	if err == nil {
		return errList
	}
	return append(errList, fmt.Errorf("%s: %w", key, err))
}
