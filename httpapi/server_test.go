package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yoHaltProgram is irmovq $9,%rax; halt as a .yo text listing.
const yoHaltProgram = `0x000: 30f00900000000000000 | irmovq $9,%rax
0x00a: 00                   | halt
`

func newUploadRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "prog.yo")
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadRunsToHalt(t *testing.T) {
	srv := NewServer()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, newUploadRequest(t, yoHaltProgram))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	states, ok := resp["states"].([]any)
	require.True(t, ok, "states field missing or wrong type: %v", resp)
	require.NotEmpty(t, states)

	last := states[len(states)-1].(map[string]any)
	assert.Equal(t, "HLT", last["status"])

	regs := last["registers"].(map[string]any)
	assert.Equal(t, float64(9), regs["rax"])
}

func TestUploadRejectsMissingFilePart(t *testing.T) {
	srv := NewServer()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStepAfterUploadedProgramHaltedIsANoOp(t *testing.T) {
	srv := NewServer()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, newUploadRequest(t, yoHaltProgram))
	require.Equal(t, http.StatusOK, rec.Code)

	// Upload already ran the program to completion; reset, then upload
	// again, which once more runs the program to completion before the
	// manual step below.
	resetRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(resetRec, httptest.NewRequest(http.MethodPost, "/api/reset", nil))
	require.Equal(t, http.StatusOK, resetRec.Code)

	reuploadRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(reuploadRec, newUploadRequest(t, yoHaltProgram))
	require.Equal(t, http.StatusOK, reuploadRec.Code)

	stepReq := httptest.NewRequest(http.MethodPost, "/api/step", nil)
	stepRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(stepRec, stepReq)
	require.Equal(t, http.StatusOK, stepRec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(stepRec.Body.Bytes(), &resp))

	// The program already halted during upload's own run, so the one
	// extra /api/step call on top is a no-op that reports success=false.
	assert.Equal(t, false, resp["success"])
	state := resp["state"].(map[string]any)
	assert.Equal(t, "HLT", state["status"])
}

func TestResetThenStepDecodesTheAllZeroHaltOpcode(t *testing.T) {
	// A freshly reset server has empty memory; every address reads as
	// zero, and icode 0 is halt, so stepping an unloaded machine halts
	// immediately rather than faulting.
	srv := NewServer()
	resetRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(resetRec, httptest.NewRequest(http.MethodPost, "/api/reset", nil))
	require.Equal(t, http.StatusOK, resetRec.Code)

	stepReq := httptest.NewRequest(http.MethodPost, "/api/step", nil)
	stepRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(stepRec, stepReq)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(stepRec.Body.Bytes(), &resp))
	state := resp["state"].(map[string]any)
	assert.Equal(t, "HLT", state["status"])
}

func TestRunEndpointExecutesToCompletion(t *testing.T) {
	srv := NewServer()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, newUploadRequest(t, yoHaltProgram))
	require.Equal(t, http.StatusOK, rec.Code)

	runReq := httptest.NewRequest(http.MethodPost, "/api/run", nil)
	runRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(runRec, runReq)
	require.Equal(t, http.StatusOK, runRec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(runRec.Body.Bytes(), &resp))
	states := resp["states"].([]any)
	last := states[len(states)-1].(map[string]any)
	assert.Equal(t, "HLT", last["status"])
}
