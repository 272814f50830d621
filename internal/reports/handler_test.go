package reports_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"reporthub-backend/internal/shared/config"
	"reporthub-backend/internal/shared/server"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := config.Config{
		Env:            "test",
		DataDir:        "data",
		StorageType:    "local",
		StoragePath:    "uploads",
		TokenSecret:    "test-secret",
		MaxUploadBytes: 10 << 20,
	}
	return server.NewRouterWithFs(cfg, afero.NewMemMapFs())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func createTestReport(t *testing.T, r *gin.Engine, title string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/report", map[string]string{"title": title})
	if w.Code != http.StatusCreated {
		t.Fatalf("create report: got status %d, body %s", w.Code, w.Body.String())
	}
	id, _ := decodeBody(t, w)["reportId"].(string)
	if id == "" {
		t.Fatalf("create report: missing reportId in %s", w.Body.String())
	}
	return id
}

func uploadTestFile(t *testing.T, r *gin.Engine, reportID, fileName, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create multipart part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write multipart part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report/"+reportID+"/attachment", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
}

func TestReportLifecycle(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "quarterly incident")

	w := doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get report: got status %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["title"] != "quarterly incident" {
		t.Errorf("got title %v", body["title"])
	}
	for _, field := range []string{"comments", "reportEntries", "attachments"} {
		seq, ok := body[field].([]any)
		if !ok {
			t.Fatalf("%s is not an array: %v", field, body[field])
		}
		if len(seq) != 0 {
			t.Errorf("%s not empty on a fresh report: %v", field, seq)
		}
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/report/"+reportID, map[string]string{"title": "renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update report: got status %d, body %s", w.Code, w.Body.String())
	}
	body = decodeBody(t, w)
	if body["title"] != "renamed" {
		t.Errorf("got title %v after update", body["title"])
	}
	if body["reportId"] != reportID {
		t.Errorf("reportId changed across update: %v", body["reportId"])
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/report/"+reportID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete report: got status %d", w.Code)
	}
	body = decodeBody(t, w)
	if body["status"] != "success" || body["reportId"] != reportID {
		t.Errorf("unexpected delete response: %v", body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted report: got status %d", w.Code)
	}
}

func TestCommentFlow(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := doJSON(t, r, http.MethodPost, "/api/v1/report/"+reportID+"/comment", map[string]string{"text": "hi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create comment: got status %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	commentID, _ := created["commentId"].(string)
	if commentID == "" {
		t.Fatalf("missing commentId in %s", w.Body.String())
	}
	if created["reportId"] != reportID {
		t.Errorf("comment back-reference is %v", created["reportId"])
	}
	if created["commentedBy"] != "anonymous" {
		t.Errorf("got commentedBy %v", created["commentedBy"])
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/comment", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list comments: got status %d", w.Code)
	}
	comments, _ := decodeBody(t, w)["comments"].([]any)
	if len(comments) != 1 {
		t.Fatalf("got %d comments", len(comments))
	}
	first, _ := comments[0].(map[string]any)
	if first["text"] != "hi" {
		t.Errorf("got comment text %v", first["text"])
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/report/"+reportID+"/comment/"+commentID, map[string]string{"text": "edited"})
	if w.Code != http.StatusOK {
		t.Fatalf("update comment: got status %d, body %s", w.Code, w.Body.String())
	}
	updated := decodeBody(t, w)
	if updated["text"] != "edited" || updated["commentId"] != commentID {
		t.Errorf("unexpected updated comment: %v", updated)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/report/"+reportID+"/comment/"+commentID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete comment: got status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/comment", nil)
	comments, _ = decodeBody(t, w)["comments"].([]any)
	if len(comments) != 0 {
		t.Errorf("comments not empty after delete: %v", comments)
	}
}

func TestCommentNotFoundIsDistinct(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := doJSON(t, r, http.MethodDelete, "/api/v1/report/"+reportID+"/comment/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Comment not found") {
		t.Errorf("got body %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/report/nope/comment/c1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Report not found") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestEntryFlow(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := doJSON(t, r, http.MethodPost, "/api/v1/report/"+reportID+"/entry", map[string]string{"text": "first finding", "createdBy": "alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create entry: got status %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	entryID, _ := created["reportEntryId"].(string)
	if entryID == "" {
		t.Fatalf("missing reportEntryId in %s", w.Body.String())
	}
	if created["reportId"] != reportID {
		t.Errorf("got reportId %v", created["reportId"])
	}

	// The entry listing is a bare array.
	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/entry", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list entries: got status %d", w.Code)
	}
	var entries []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entry list %q: %v", w.Body.String(), err)
	}
	if len(entries) != 1 || entries[0]["createdBy"] != "alice" {
		t.Fatalf("unexpected entry list: %v", entries)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/entry/"+entryID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get entry: got status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/report/"+reportID+"/entry/"+entryID, map[string]string{"text": "revised"})
	if w.Code != http.StatusOK {
		t.Fatalf("update entry: got status %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["text"] != "revised" {
		t.Errorf("entry text not updated: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/report/"+reportID+"/entry/"+entryID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete entry: got status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/entry/"+entryID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted entry: got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Report entry not found") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestAttachmentUploadAndListing(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "hello.txt", "text/plain", "hello world")
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: got status %d, body %s", w.Code, w.Body.String())
	}
	attachment := decodeBody(t, w)
	if attachment["attachmentName"] != "hello.txt" {
		t.Errorf("got attachmentName %v", attachment["attachmentName"])
	}
	if attachment["attachmentType"] != "text/plain" {
		t.Errorf("got attachmentType %v", attachment["attachmentType"])
	}
	if size, _ := attachment["attachmentSize"].(float64); int(size) != len("hello world") {
		t.Errorf("got attachmentSize %v", attachment["attachmentSize"])
	}
	attachmentID, _ := attachment["attachmentId"].(string)
	if attachmentID == "" {
		t.Fatalf("missing attachmentId in %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list attachments: got status %d", w.Code)
	}
	attachments, _ := decodeBody(t, w)["attachments"].([]any)
	if len(attachments) != 1 {
		t.Fatalf("got %d attachments", len(attachments))
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get attachment: got status %d", w.Code)
	}
}

func TestAttachmentUploadRejectsDisallowedType(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "app.exe", "application/x-msdownload", "MZ")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "is not allowed") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestAttachmentUploadMissingReport(t *testing.T) {
	r := newTestRouter(t)

	w := uploadTestFile(t, r, "nope", "hello.txt", "text/plain", "hello")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAttachmentUploadWithoutFile(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report/"+reportID+"/attachment", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestTokenDownloadFlow(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "hello.txt", "text/plain", "hello world")
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: got status %d, body %s", w.Code, w.Body.String())
	}
	attachmentID, _ := decodeBody(t, w)["attachmentId"].(string)

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID+"/token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("issue token: got status %d, body %s", w.Code, w.Body.String())
	}
	issued := decodeBody(t, w)
	token, _ := issued["token"].(string)
	if token == "" {
		t.Fatalf("missing token in %s", w.Body.String())
	}
	downloadURL, _ := issued["downloadUrl"].(string)
	if !strings.Contains(downloadURL, "/download?token=") {
		t.Errorf("got downloadUrl %q", downloadURL)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID+"/download?token="+token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download: got status %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "hello world" {
		t.Errorf("got body %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, `filename="hello.txt"`) {
		t.Errorf("got Content-Disposition %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("got Content-Type %q", got)
	}
}

func TestDownloadWithoutTokenFails(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "hello.txt", "text/plain", "hello")
	attachmentID, _ := decodeBody(t, w)["attachmentId"].(string)

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID+"/download", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestDownloadWithExpiredTokenFails(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "hello.txt", "text/plain", "hello")
	attachmentID, _ := decodeBody(t, w)["attachmentId"].(string)

	// expires=0 mints a token that is already at its expiry instant.
	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID+"/token?expires=0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("issue token: got status %d, body %s", w.Code, w.Body.String())
	}
	token, _ := decodeBody(t, w)["token"].(string)

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID+"/download?token="+token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestDownloadTokenDoesNotTransfer(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "one.txt", "text/plain", "one")
	firstID, _ := decodeBody(t, w)["attachmentId"].(string)
	w = uploadTestFile(t, r, reportID, "two.txt", "text/plain", "two")
	secondID, _ := decodeBody(t, w)["attachmentId"].(string)

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+firstID+"/token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("issue token: got status %d", w.Code)
	}
	token, _ := decodeBody(t, w)["token"].(string)

	// A valid token presented against a different attachment is refused.
	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+secondID+"/download?token="+token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAttachmentDelete(t *testing.T) {
	r := newTestRouter(t)
	reportID := createTestReport(t, r, "R1")

	w := uploadTestFile(t, r, reportID, "hello.txt", "text/plain", "hello")
	attachmentID, _ := decodeBody(t, w)["attachmentId"].(string)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/report/"+reportID+"/attachment/"+attachmentID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete attachment: got status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/report/"+reportID+"/attachment/"+attachmentID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted attachment: got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Attachment not found") {
		t.Errorf("got body %s", w.Body.String())
	}
}
