package es

import (
	"context"
	"errors"
	"net/url"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/tidwall/gjson"              // Dynamic JSON parsing.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
)

// UpdateAliasesService applies alias actions atomically
// (POST /_aliases) from an arbitrary actions body. The olivere client
// only exposes this API through typed action builders.
type UpdateAliasesService struct {
	client        *elastic.Client
	masterTimeout string
	pretty        bool
	body          blocks.Block
}

// NewUpdateAliasesService returns a new UpdateAliasesService.
func NewUpdateAliasesService(client *elastic.Client) *UpdateAliasesService {
	return &UpdateAliasesService{client: client}
}

// Body sets the request body as a block. The block should describe
// {"actions": [{"add": {...}}, {"remove": {...}}, ...]}.
func (s *UpdateAliasesService) Body(blk blocks.Block) *UpdateAliasesService {
	s.body = blk
	return s
}

// MasterTimeout sets the timeout for connection to the master node.
func (s *UpdateAliasesService) MasterTimeout(timeout string) *UpdateAliasesService {
	s.masterTimeout = timeout
	return s
}

// Pretty asks Elasticsearch to indent the JSON response.
func (s *UpdateAliasesService) Pretty(pretty bool) *UpdateAliasesService {
	s.pretty = pretty
	return s
}

func (s *UpdateAliasesService) buildURL() (string, url.Values) {
	path := "/_aliases"
	params := url.Values{}
	if s.pretty {
		params.Set("pretty", "true")
	}
	if s.masterTimeout != "" {
		params.Set("master_timeout", s.masterTimeout)
	}
	return path, params
}

// Validate checks if the operation is valid.
func (s *UpdateAliasesService) Validate() error {
	if s.body == nil {
		return errors.New("es: alias update requires a body")
	}
	return nil
}

// Do executes the operation.
func (s *UpdateAliasesService) Do(ctx context.Context) (*UpdateAliasesResponse, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	body, err := blocks.Map(s.body)
	if err != nil {
		return nil, err
	}
	if _, ok := body["actions"]; !ok {
		return nil, errors.New("es: alias update body requires an actions key")
	}

	path, params := s.buildURL()
	res, err := s.client.PerformRequest(ctx, elastic.PerformRequestOptions{
		Method: "POST",
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
	return &UpdateAliasesResponse{
		Acknowledged: gjson.GetBytes(raw, "acknowledged").Bool(),
	}, nil
}

// UpdateAliasesResponse represents the response from the Elasticsearch
// `POST /_aliases` API.
type UpdateAliasesResponse struct {
	Acknowledged bool
}
