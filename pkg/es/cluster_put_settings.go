package es

import (
	"context"
	"errors"
	"net/url"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/tidwall/gjson"              // Dynamic JSON parsing.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
)

// ClusterPutSettingsService updates the settings of an Elasticsearch
// cluster (PUT /_cluster/settings), which the olivere client doesn't
// expose.
type ClusterPutSettingsService struct {
	client        *elastic.Client
	flatSettings  *bool
	masterTimeout string
	pretty        bool
	body          blocks.Block
	transient     map[string]interface{}
	persistent    map[string]interface{}
}

// NewClusterPutSettingsService returns a new ClusterPutSettingsService.
func NewClusterPutSettingsService(client *elastic.Client) *ClusterPutSettingsService {
	return &ClusterPutSettingsService{
		client:     client,
		transient:  make(map[string]interface{}),
		persistent: make(map[string]interface{}),
	}
}

// Transient adds a transient setting to the request.
func (s *ClusterPutSettingsService) Transient(setting string, value interface{}) *ClusterPutSettingsService {
	s.transient[setting] = value
	return s
}

// Persistent adds a persistent setting to the request.
func (s *ClusterPutSettingsService) Persistent(setting string, value interface{}) *ClusterPutSettingsService {
	s.persistent[setting] = value
	return s
}

// Body sets the whole request body as a block. It takes precedence
// over Transient and Persistent. The block should describe
// {"persistent": {...}} and/or {"transient": {...}}.
func (s *ClusterPutSettingsService) Body(blk blocks.Block) *ClusterPutSettingsService {
	s.body = blk
	return s
}

// FlatSettings indicates whether settings should be returned in flat
// dotted format instead of nested objects.
func (s *ClusterPutSettingsService) FlatSettings(flat bool) *ClusterPutSettingsService {
	s.flatSettings = &flat
	return s
}

// MasterTimeout sets the timeout for connection to the master node.
func (s *ClusterPutSettingsService) MasterTimeout(timeout string) *ClusterPutSettingsService {
	s.masterTimeout = timeout
	return s
}

// Pretty asks Elasticsearch to indent the JSON response.
func (s *ClusterPutSettingsService) Pretty(pretty bool) *ClusterPutSettingsService {
	s.pretty = pretty
	return s
}

func (s *ClusterPutSettingsService) buildURL() (string, url.Values) {
	path := "/_cluster/settings"
	params := url.Values{}
	if s.pretty {
		params.Set("pretty", "true")
	}
	if s.flatSettings != nil {
		if *s.flatSettings {
			params.Set("flat_settings", "true")
		} else {
			params.Set("flat_settings", "false")
		}
	}
	if s.masterTimeout != "" {
		params.Set("master_timeout", s.masterTimeout)
	}
	return path, params
}

// Validate checks if the operation is valid.
func (s *ClusterPutSettingsService) Validate() error {
	if s.body == nil && len(s.transient) == 0 && len(s.persistent) == 0 {
		return errors.New("es: cluster settings update requires a body")
	}
	return nil
}

// Do executes the operation.
func (s *ClusterPutSettingsService) Do(ctx context.Context) (*ClusterPutSettingsResponse, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	path, params := s.buildURL()

	var body interface{}
	if s.body != nil {
		m, err := blocks.Map(s.body)
		if err != nil {
			return nil, err
		}
		body = m
	} else {
		body = map[string]interface{}{
			"persistent": s.persistent,
			"transient":  s.transient,
		}
	}

	res, err := s.client.PerformRequest(ctx, elastic.PerformRequestOptions{
		Method: "PUT",
		Path:   path,
		Params: params,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	raw, err := res.Body.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("es: cluster settings response is not valid JSON")
	}
	result := gjson.ParseBytes(raw)
	persistent := result.Get("persistent")
	transient := result.Get("transient")
	return &ClusterPutSettingsResponse{
		Persistent: &persistent,
		Transient:  &transient,
	}, nil
}

// ClusterPutSettingsResponse represents the response from the
// Elasticsearch `PUT /_cluster/settings` API. It echoes the new
// values of the changed settings.
type ClusterPutSettingsResponse struct {
	// Persistent holds settings that survive cluster restarts.
	Persistent *gjson.Result

	// Transient holds settings that reset on cluster restart.
	Transient *gjson.Result
}
