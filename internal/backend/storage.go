package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// File is a stored object's descriptor. Width and height are zero when the
// backend did not extract image dimensions.
type File struct {
	ID        string `json:"$id"`
	BucketID  string `json:"bucketId"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	Size      int64  `json:"sizeOriginal"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	CreatedAt string `json:"$createdAt"`
}

// FileList is a page of storage objects.
type FileList struct {
	Total int64  `json:"total"`
	Files []File `json:"files"`
}

// StorageClient exposes the object storage endpoints of a single bucket.
type StorageClient struct {
	client   *Client
	bucketID string
}

// Storage returns a storage sub-client bound to the given bucket.
func (c *Client) Storage(bucketID string) *StorageClient {
	return &StorageClient{client: c, bucketID: bucketID}
}

// CreateFile uploads raw bytes as a new object. Size and type validation is
// enforced remotely.
func (s *StorageClient) CreateFile(ctx context.Context, id, name, mimeType string, data []byte) (*File, error) {
	resp, err := s.client.request(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetFormData(map[string]string{
			"fileId":   id,
			"mimeType": mimeType,
		}).
		SetResult(&File{}).
		Post("/storage/buckets/" + url.PathEscape(s.bucketID) + "/files")
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Result().(*File), nil
}

// ListFiles returns objects matching the supplied queries.
func (s *StorageClient) ListFiles(ctx context.Context, queries ...Query) (*FileList, error) {
	values := url.Values{}
	for _, q := range encodeQueries(queries) {
		values.Add("queries[]", q)
	}

	resp, err := s.client.request(ctx).
		SetQueryParamsFromValues(values).
		SetResult(&FileList{}).
		Get("/storage/buckets/" + url.PathEscape(s.bucketID) + "/files")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Result().(*FileList), nil
}

// DeleteFile removes an object. Any catalog document pointing at it is left
// behind.
func (s *StorageClient) DeleteFile(ctx context.Context, id string) error {
	resp, err := s.client.request(ctx).
		Delete("/storage/buckets/" + url.PathEscape(s.bucketID) + "/files/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return checkResponse(resp)
}

// PreviewURL builds the deterministic transformation URL for an object:
// center crop at the requested size, quality 100. No network call is made.
func (s *StorageClient) PreviewURL(id string, width, height int) string {
	values := url.Values{}
	values.Set("width", strconv.Itoa(width))
	values.Set("height", strconv.Itoa(height))
	values.Set("gravity", "center")
	values.Set("quality", "100")
	values.Set("project", s.client.project)

	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/preview?%s",
		s.client.endpoint, url.PathEscape(s.bucketID), url.PathEscape(id), values.Encode())
}
