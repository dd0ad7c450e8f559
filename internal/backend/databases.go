package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// DocumentList is a page of documents. Documents are returned raw so callers
// can decode their own collection schemas.
type DocumentList struct {
	Total     int64             `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// DatabasesClient exposes the document database endpoints of a single database.
type DatabasesClient struct {
	client     *Client
	databaseID string
}

// Databases returns a document database sub-client bound to the given database.
func (c *Client) Databases(databaseID string) *DatabasesClient {
	return &DatabasesClient{client: c, databaseID: databaseID}
}

// CreateDocument writes a new document with the given fields.
func (d *DatabasesClient) CreateDocument(ctx context.Context, collectionID, documentID string, data any) error {
	resp, err := d.client.request(ctx).
		SetBody(map[string]any{
			"documentId": documentID,
			"data":       data,
		}).
		Post(d.collectionPath(collectionID))
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return checkResponse(resp)
}

// ListDocuments returns documents matching the supplied queries.
func (d *DatabasesClient) ListDocuments(ctx context.Context, collectionID string, queries ...Query) (*DocumentList, error) {
	values := url.Values{}
	for _, q := range encodeQueries(queries) {
		values.Add("queries[]", q)
	}

	resp, err := d.client.request(ctx).
		SetQueryParamsFromValues(values).
		SetResult(&DocumentList{}).
		Get(d.collectionPath(collectionID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Result().(*DocumentList), nil
}

func (d *DatabasesClient) collectionPath(collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(d.databaseID), url.PathEscape(collectionID))
}
