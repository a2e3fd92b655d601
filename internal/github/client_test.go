package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/santobu/copilot-metrics-dashboard/internal/config"
	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.GitHubConfig{
		BaseURL:    baseURL,
		Token:      "test-token",
		APIVersion: "2022-11-28",
	})
}

func TestUsageDecodesAndStampsScope(t *testing.T) {
	var gotAuth, gotVersion string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("X-GitHub-Api-Version")
		if r.URL.Path != "/orgs/acme/copilot/usage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"day":"2024-01-08","total_suggestions_count":100,"total_acceptances_count":40,
			 "breakdown":[{"language":"go","editor":"vscode","suggestions_count":100,"acceptances_count":40}]}
		]`)
	}))
	defer ts.Close()

	scope := models.Scope{Kind: models.ScopeOrganization, Name: "acme"}
	records, err := newTestClient(ts.URL).Usage(context.Background(), scope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotVersion != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q", gotVersion)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Day != "2024-01-08" || rec.TotalSuggestions != 100 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Organization != "acme" || rec.Enterprise != "" {
		t.Fatalf("scope not stamped: %+v", rec)
	}
	if len(rec.Breakdown) != 1 || rec.Breakdown[0].Language != "go" {
		t.Fatalf("breakdown not decoded: %+v", rec.Breakdown)
	}
}

func TestUsageRejectsMalformedDay(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"day":"08/01/2024"}]`)
	}))
	defer ts.Close()

	scope := models.Scope{Kind: models.ScopeOrganization, Name: "acme"}
	_, err := newTestClient(ts.URL).Usage(context.Background(), scope)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestEnterpriseSeatsFollowsLinkHeader(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/enterprises/acme/copilot/billing/seats?page=2>; rel="next"`, ts.URL))
			fmt.Fprint(w, `{"total_seats":5,"seats":[{"assignee":{"id":1,"login":"ada"},"created_at":"2023-05-01T00:00:00Z"},{"assignee":{"id":2,"login":"brian"},"created_at":"2023-05-02T00:00:00Z"}]}`)
		case "2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/enterprises/acme/copilot/billing/seats?page=3>; rel="next", <%s/enterprises/acme/copilot/billing/seats?page=3>; rel="last"`, ts.URL, ts.URL))
			fmt.Fprint(w, `{"total_seats":5,"seats":[{"assignee":{"id":3,"login":"carol"},"created_at":"2023-05-03T00:00:00Z"},{"assignee":{"id":4,"login":"dan"},"created_at":"2023-05-04T00:00:00Z"}]}`)
		case "3":
			fmt.Fprint(w, `{"total_seats":5,"seats":[{"assignee":{"id":5,"login":"erin"},"created_at":"2023-05-05T00:00:00Z"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	scope := models.Scope{Kind: models.ScopeEnterprise, Name: "acme"}
	total, seats, err := newTestClient(ts.URL).EnterpriseSeats(context.Background(), scope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Fatalf("total_seats = %d, want 5", total)
	}
	if len(seats) != 5 {
		t.Fatalf("expected 5 seats across 3 pages, got %d", len(seats))
	}
	wantLogins := []string{"ada", "brian", "carol", "dan", "erin"}
	for i, login := range wantLogins {
		if seats[i].UserLogin != login {
			t.Errorf("seat %d login = %s, want %s (page order must be preserved)", i, seats[i].UserLogin, login)
		}
	}
	if seats[0].UserID != 1 || seats[0].AssignmentDate != "2023-05-01T00:00:00Z" {
		t.Errorf("assignee not coerced: %+v", seats[0])
	}
}

func TestEnterpriseSeatsDiscardsPartialOnError(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/enterprises/acme/copilot/billing/seats?page=2>; rel="next"`, ts.URL))
		fmt.Fprint(w, `{"total_seats":4,"seats":[{"assignee":{"id":1,"login":"ada"},"created_at":"2023-05-01T00:00:00Z"}]}`)
	}))
	defer ts.Close()

	scope := models.Scope{Kind: models.ScopeEnterprise, Name: "acme"}
	total, seats, err := newTestClient(ts.URL).EnterpriseSeats(context.Background(), scope)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", upstreamErr.StatusCode)
	}
	if upstreamErr.Scope != scope.String() {
		t.Errorf("scope = %s, want %s", upstreamErr.Scope, scope)
	}
	if total != 0 || seats != nil {
		t.Fatalf("partial results must be discarded, got total=%d seats=%v", total, seats)
	}
}

func TestOrganizationBilling(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orgs/acme/copilot/billing" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"seat_breakdown":{"total":12,"active_this_cycle":9,"inactive_this_cycle":3,"added_this_cycle":2,"pending_invitation":1,"pending_cancellation":0},
			"seat_management_setting":"assign_selected","public_code_suggestions":"block","plan_type":"business"
		}`)
	}))
	defer ts.Close()

	scope := models.Scope{Kind: models.ScopeOrganization, Name: "acme"}
	billing, err := newTestClient(ts.URL).OrganizationBilling(context.Background(), scope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if billing.SeatBreakdown.Total != 12 || billing.SeatBreakdown.ActiveThisCycle != 9 {
		t.Fatalf("unexpected breakdown %+v", billing.SeatBreakdown)
	}
	if billing.SeatManagementSetting != "assign_selected" || billing.PlanType != "business" {
		t.Fatalf("policy strings not decoded: %+v", billing)
	}
}
