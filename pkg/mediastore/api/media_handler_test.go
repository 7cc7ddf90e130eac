package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmarket/media-store/pkg/mediastore"
	"github.com/pawmarket/media-store/pkg/mediastore/api"
	repomemory "github.com/pawmarket/media-store/pkg/mediastore/repo/memory"
	memorystorage "github.com/pawmarket/media-store/pkg/mediastore/storage/memory"
	"github.com/pawmarket/media-store/pkg/mediastore/urlderive"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc, err := mediastore.New(
		mediastore.WithMetadataStore(repomemory.New()),
		mediastore.WithBackend(memorystorage.New("")),
		mediastore.WithURLDeriver(urlderive.NewTransformDeriver("")),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/media", api.NewMediaHandler(svc).Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func multipartUpload(t *testing.T, url, filename, entityType, entityID string, data []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("entity_type", entityType))
	if entityID != "" {
		require.NoError(t, mw.WriteField("entity_id", entityID))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/media/", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestUploadMedia_Image(t *testing.T) {
	srv := setupServer(t)

	resp := multipartUpload(t, srv.URL, "puppy.jpg", "pet", "42", []byte("jpeg bytes"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var asset mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))

	assert.Equal(t, mediastore.ResourceKindImage, asset.ResourceKind)
	assert.Equal(t, "jpg", asset.Format)
	require.NotNil(t, asset.EntityID)
	assert.Equal(t, int64(42), *asset.EntityID)
	assert.NotEmpty(t, asset.SecureURL)
	assert.Equal(t, int64(len("jpeg bytes")), asset.Bytes)
}

func TestUploadMedia_InvalidEntityType(t *testing.T) {
	srv := setupServer(t)

	resp := multipartUpload(t, srv.URL, "puppy.jpg", "spaceship", "", []byte("x"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVideoThumbnail(t *testing.T) {
	srv := setupServer(t)

	resp := multipartUpload(t, srv.URL, "clip.mp4", "pet", "", []byte("mp4 bytes"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var asset mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	require.Equal(t, mediastore.ResourceKindVideo, asset.ResourceKind)

	thumbResp, err := http.Get(fmt.Sprintf("%s/media/%s/thumbnail?width=640&height=360", srv.URL, asset.ID))
	require.NoError(t, err)
	defer thumbResp.Body.Close()
	require.Equal(t, http.StatusOK, thumbResp.StatusCode)

	var thumb api.ThumbnailResponse
	require.NoError(t, json.NewDecoder(thumbResp.Body).Decode(&thumb))
	assert.Contains(t, thumb.ThumbnailURL, "w_640,h_360,c_fill")
	assert.Contains(t, thumb.ThumbnailURL, ".jpg")
}

func TestListAndDelete(t *testing.T) {
	srv := setupServer(t)

	resp := multipartUpload(t, srv.URL, "puppy.jpg", "pet", "42", []byte("jpeg bytes"))
	var asset mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/media/?entity_type=pet&entity_id=42")
	require.NoError(t, err)
	var assets []*mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&assets))
	listResp.Body.Close()
	require.Len(t, assets, 1)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/media/"+asset.PublicID+"?kind=image", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	var del api.DeleteResponse
	require.NoError(t, json.NewDecoder(delResp.Body).Decode(&del))
	assert.True(t, del.Deleted)

	// Deleted asset must not appear in a re-query
	listResp2, err := http.Get(srv.URL + "/media/?entity_type=pet&entity_id=42")
	require.NoError(t, err)
	var after []*mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(listResp2.Body).Decode(&after))
	listResp2.Body.Close()
	assert.Empty(t, after)
}

func TestDeleteVideoWithoutKind(t *testing.T) {
	srv := setupServer(t)

	resp := multipartUpload(t, srv.URL, "clip.mp4", "pet", "", []byte("mp4 bytes"))
	var asset mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	resp.Body.Close()
	require.Equal(t, mediastore.ResourceKindVideo, asset.ResourceKind)

	// No kind query param: the record's kind must locate the object anyway.
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/media/"+asset.PublicID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	var del api.DeleteResponse
	require.NoError(t, json.NewDecoder(delResp.Body).Decode(&del))
	assert.True(t, del.Deleted)
}

func TestAttachEntity(t *testing.T) {
	srv := setupServer(t)

	resp := multipartUpload(t, srv.URL, "puppy.jpg", "pet", "", []byte("jpeg bytes"))
	var asset mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	resp.Body.Close()
	require.Nil(t, asset.EntityID)

	body, err := json.Marshal(api.AttachEntityRequest{EntityID: 42})
	require.NoError(t, err)
	attachResp, err := http.Post(fmt.Sprintf("%s/media/%s/entity", srv.URL, asset.ID), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	attachResp.Body.Close()
	require.Equal(t, http.StatusNoContent, attachResp.StatusCode)

	listResp, err := http.Get(srv.URL + "/media/?entity_type=pet&entity_id=42")
	require.NoError(t, err)
	var assets []*mediastore.MediaAsset
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&assets))
	listResp.Body.Close()
	require.Len(t, assets, 1)
	assert.Equal(t, asset.PublicID, assets[0].PublicID)
}
