package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stocktrail/internal/db"
	"stocktrail/internal/model"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, "test-secret")
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// signup creates an account through the API and returns its session token.
func signup(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "correct-horse",
	})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d", resp.StatusCode)
	}

	var tokenResp map[string]string
	json.NewDecoder(resp.Body).Decode(&tokenResp)
	if tokenResp["token"] == "" {
		t.Fatal("empty token from signup")
	}
	return tokenResp["token"]
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
}

// createOrgAndSection bootstraps a member with an organization and one
// top-level section, returning the token and the section ID.
func createOrgAndSection(t *testing.T, server *httptest.Server, email string) (string, int64) {
	t.Helper()
	token := signup(t, server, email)

	req, _ := authRequest("POST", server.URL+"/api/organization/create", token, map[string]string{"name": "Acme"})
	doJSON(t, req, http.StatusCreated, nil)

	var section model.Section
	req, _ = authRequest("POST", server.URL+"/api/sections", token, map[string]string{"name": "Storage"})
	doJSON(t, req, http.StatusCreated, &section)

	return token, section.ID
}

func TestSessionLifecycle(t *testing.T) {
	server := setupTestServer(t)

	// No token.
	resp, _ := http.Get(server.URL + "/api/session")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	token := signup(t, server, "alice@example.com")

	var session map[string]any
	req, _ := authRequest("GET", server.URL+"/api/session", token, nil)
	doJSON(t, req, http.StatusOK, &session)
	if session["authenticated"] != true {
		t.Errorf("expected authenticated session, got %v", session)
	}

	// Logout revokes the token.
	req, _ = authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/session", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginWrongPassword(t *testing.T) {
	server := setupTestServer(t)
	signup(t, server, "alice@example.com")

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestOrganizationCreateAndJoin(t *testing.T) {
	server := setupTestServer(t)
	creatorToken := signup(t, server, "founder@example.com")

	var created struct {
		Organization model.Organization `json:"organization"`
	}
	req, _ := authRequest("POST", server.URL+"/api/organization/create", creatorToken, map[string]string{"name": "Acme"})
	doJSON(t, req, http.StatusCreated, &created)
	if created.Organization.Code == "" {
		t.Fatal("expected a join code in the response")
	}

	// Another user joins by code.
	joinerToken := signup(t, server, "joiner@example.com")
	req, _ = authRequest("POST", server.URL+"/api/organization/join", joinerToken, map[string]string{"orgCode": created.Organization.Code})
	doJSON(t, req, http.StatusOK, nil)

	// Joining again is rejected: already a member.
	req, _ = authRequest("POST", server.URL+"/api/organization/join", joinerToken, map[string]string{"orgCode": created.Organization.Code})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for second join, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestJoinUnknownCode(t *testing.T) {
	server := setupTestServer(t)
	token := signup(t, server, "alice@example.com")

	req, _ := authRequest("POST", server.URL+"/api/organization/join", token, map[string]string{"orgCode": "missing1"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown code, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateOrganizationMissingName(t *testing.T) {
	server := setupTestServer(t)
	token := signup(t, server, "alice@example.com")

	req, _ := authRequest("POST", server.URL+"/api/organization/create", token, map[string]string{})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSectionsRequireOrganization(t *testing.T) {
	server := setupTestServer(t)
	token := signup(t, server, "loner@example.com")

	req, _ := authRequest("GET", server.URL+"/api/sections", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for user without organization, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemFlow(t *testing.T) {
	server := setupTestServer(t)
	token, sectionID := createOrgAndSection(t, server, "alice@example.com")

	// Create item with quantity 5.
	var item model.Item
	req, _ := authRequest("POST", fmt.Sprintf("%s/api/sections/%d/items", server.URL, sectionID), token, map[string]any{
		"name":     "Widget",
		"quantity": 5,
		"location": "Shelf A",
		"sku":      "W-1",
	})
	doJSON(t, req, http.StatusCreated, &item)
	if item.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", item.Quantity)
	}

	// Fetch the detail view: one CREATE audit entry, one ADD transaction.
	var detail struct {
		Item         model.Item               `json:"item"`
		Section      model.Section            `json:"section"`
		AuditLogs    []model.AuditLog         `json:"audit_logs"`
		Transactions []model.StockTransaction `json:"transactions"`
	}
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, nil)
	doJSON(t, req, http.StatusOK, &detail)
	if detail.Section.ID != sectionID {
		t.Errorf("expected section %d in detail, got %d", sectionID, detail.Section.ID)
	}
	if len(detail.AuditLogs) != 1 || detail.AuditLogs[0].Action != model.AuditActionCreate || detail.AuditLogs[0].QuantityChange != 5 {
		t.Errorf("expected one CREATE +5 audit entry, got %+v", detail.AuditLogs)
	}
	if len(detail.Transactions) != 1 || detail.Transactions[0].Type != model.TransactionTypeAdd || detail.Transactions[0].Quantity != 5 {
		t.Errorf("expected one ADD 5 transaction, got %+v", detail.Transactions)
	}

	// Adjust quantity from 5 to 2: ADJUST -3, REMOVE 3.
	var updated model.Item
	req, _ = authRequest("PATCH", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, map[string]any{"quantity": 2})
	doJSON(t, req, http.StatusOK, &updated)
	if updated.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", updated.Quantity)
	}

	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, nil)
	doJSON(t, req, http.StatusOK, &detail)
	if len(detail.AuditLogs) != 2 || detail.AuditLogs[0].Action != model.AuditActionAdjust || detail.AuditLogs[0].QuantityChange != -3 {
		t.Errorf("expected newest audit entry ADJUST -3, got %+v", detail.AuditLogs)
	}
	if detail.Transactions[0].Type != model.TransactionTypeRemove || detail.Transactions[0].Quantity != 3 {
		t.Errorf("expected newest transaction REMOVE 3, got %+v", detail.Transactions)
	}

	// Delete.
	var deleted map[string]bool
	req, _ = authRequest("DELETE", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, nil)
	doJSON(t, req, http.StatusOK, &deleted)
	if !deleted["success"] {
		t.Errorf("expected success response, got %v", deleted)
	}

	req, _ = authRequest("GET", fmt.Sprintf("%s/api/items/%d", server.URL, item.ID), token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemNotFound(t *testing.T) {
	server := setupTestServer(t)
	token, _ := createOrgAndSection(t, server, "alice@example.com")

	req, _ := authRequest("GET", server.URL+"/api/items/9999", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCombinedSectionEntryEndpoint(t *testing.T) {
	server := setupTestServer(t)
	token, sectionID := createOrgAndSection(t, server, "alice@example.com")

	// type:item creates an item.
	var item model.Item
	req, _ := authRequest("POST", fmt.Sprintf("%s/api/sections/%d", server.URL, sectionID), token, map[string]any{
		"type":     "item",
		"name":     "Widget",
		"quantity": 3,
	})
	doJSON(t, req, http.StatusCreated, &item)
	if item.SectionID != sectionID {
		t.Errorf("expected item in section %d, got %d", sectionID, item.SectionID)
	}

	// type:subsection creates a child section.
	var sub model.Section
	req, _ = authRequest("POST", fmt.Sprintf("%s/api/sections/%d", server.URL, sectionID), token, map[string]any{
		"type":        "subsection",
		"name":        "Drawer",
		"description": "Small parts",
	})
	doJSON(t, req, http.StatusCreated, &sub)
	if sub.ParentID == nil || *sub.ParentID != sectionID {
		t.Errorf("expected subsection parent %d, got %v", sectionID, sub.ParentID)
	}

	// Unknown type is rejected.
	req, _ = authRequest("POST", fmt.Sprintf("%s/api/sections/%d", server.URL, sectionID), token, map[string]any{
		"type": "gadget",
		"name": "Nope",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSectionDetailAndSubsectionCounts(t *testing.T) {
	server := setupTestServer(t)
	token, sectionID := createOrgAndSection(t, server, "alice@example.com")

	var sub model.Section
	req, _ := authRequest("POST", fmt.Sprintf("%s/api/sections/%d/subsections", server.URL, sectionID), token, map[string]string{
		"name": "Drawer",
	})
	doJSON(t, req, http.StatusCreated, &sub)

	req, _ = authRequest("POST", fmt.Sprintf("%s/api/sections/%d/items", server.URL, sub.ID), token, map[string]any{
		"name":     "Screw",
		"quantity": 100,
	})
	doJSON(t, req, http.StatusCreated, nil)

	var subsections []model.Section
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/sections/%d/subsections", server.URL, sectionID), token, nil)
	doJSON(t, req, http.StatusOK, &subsections)
	if len(subsections) != 1 || subsections[0].ItemCount != 1 {
		t.Errorf("expected 1 subsection with 1 item, got %+v", subsections)
	}

	var detail struct {
		Section     model.Section   `json:"section"`
		Items       []model.Item    `json:"items"`
		Subsections []model.Section `json:"subsections"`
	}
	req, _ = authRequest("GET", fmt.Sprintf("%s/api/sections/%d", server.URL, sectionID), token, nil)
	doJSON(t, req, http.StatusOK, &detail)
	if detail.Section.ID != sectionID {
		t.Errorf("expected section %d, got %d", sectionID, detail.Section.ID)
	}
	if len(detail.Subsections) != 1 {
		t.Errorf("expected 1 subsection in detail, got %d", len(detail.Subsections))
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server := setupTestServer(t)

	for _, path := range []string{"/api/sections", "/api/items/1"} {
		resp, _ := http.Get(server.URL + path)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}
