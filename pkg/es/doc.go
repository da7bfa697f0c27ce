// Package es implements Elasticsearch request services that
// github.com/olivere/elastic is missing, in the same builder style,
// plus client dialing helpers. The cluster settings services accept
// request bodies either as plain values or as blocks
// (github.com/mintel/elasticsearch-blocks/pkg/blocks).
package es
