package es

import (
	"context"
	"errors"
	"net/url"
	"strings"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/tidwall/gjson"              // Dynamic JSON parsing.
)

// ClusterGetSettingsService gets the settings of an Elasticsearch
// cluster (GET /_cluster/settings), which the olivere client doesn't
// expose.
type ClusterGetSettingsService struct {
	client          *elastic.Client
	includeDefaults bool
	flatSettings    *bool
	masterTimeout   string
	filterPath      []string
	pretty          bool
}

// NewClusterGetSettingsService returns a new ClusterGetSettingsService.
func NewClusterGetSettingsService(client *elastic.Client) *ClusterGetSettingsService {
	return &ClusterGetSettingsService{client: client}
}

// Defaults indicates whether Elasticsearch should include default
// setting values in the response.
func (s *ClusterGetSettingsService) Defaults(include bool) *ClusterGetSettingsService {
	s.includeDefaults = include
	return s
}

// FlatSettings indicates whether settings should be returned in flat
// dotted format instead of nested objects.
func (s *ClusterGetSettingsService) FlatSettings(flat bool) *ClusterGetSettingsService {
	s.flatSettings = &flat
	return s
}

// MasterTimeout sets the timeout for connection to the master node.
func (s *ClusterGetSettingsService) MasterTimeout(timeout string) *ClusterGetSettingsService {
	s.masterTimeout = timeout
	return s
}

// FilterPath reduces the response via response filtering:
// https://www.elastic.co/guide/en/elasticsearch/reference/7.0/common-options.html#common-options-response-filtering.
func (s *ClusterGetSettingsService) FilterPath(filterPath ...string) *ClusterGetSettingsService {
	s.filterPath = append(s.filterPath, filterPath...)
	return s
}

// Pretty asks Elasticsearch to indent the JSON response.
func (s *ClusterGetSettingsService) Pretty(pretty bool) *ClusterGetSettingsService {
	s.pretty = pretty
	return s
}

func (s *ClusterGetSettingsService) buildURL() (string, url.Values) {
	path := "/_cluster/settings"
	params := url.Values{}
	if s.pretty {
		params.Set("pretty", "true")
	}
	if s.includeDefaults {
		params.Set("include_defaults", "true")
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
	if len(s.filterPath) > 0 {
		params.Set("filter_path", strings.Join(s.filterPath, ","))
	}
	return path, params
}

// Do executes the operation.
func (s *ClusterGetSettingsService) Do(ctx context.Context) (*ClusterGetSettingsResponse, error) {
	path, params := s.buildURL()

	res, err := s.client.PerformRequest(ctx, elastic.PerformRequestOptions{
		Method: "GET",
		Path:   path,
		Params: params,
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
	resp := &ClusterGetSettingsResponse{
		Persistent: &persistent,
		Transient:  &transient,
	}
	if s.includeDefaults {
		defaults := result.Get("defaults")
		resp.Defaults = &defaults
	}
	return resp, nil
}

// ClusterGetSettingsResponse represents the response from the
// Elasticsearch `GET /_cluster/settings` API.
type ClusterGetSettingsResponse struct {
	// Persistent holds settings that survive cluster restarts.
	Persistent *gjson.Result

	// Transient holds settings that reset on cluster restart.
	Transient *gjson.Result

	// Defaults holds default setting values.
	// Only set if Defaults(true) was requested.
	Defaults *gjson.Result
}
