package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client is a minimal Canvas LMS REST client covering the calls the
// notifier needs: identity check, course enumeration and assignment
// listing/detail. All list endpoints follow Link-header pagination.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// User is the authenticated Canvas user, used as a connectivity check.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course is one active enrollment.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is the raw Canvas assignment payload. Timestamps stay as
// strings here; normalization into the target timezone happens upstream.
type Assignment struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	DueAt             string       `json:"due_at"`
	UnlockAt          string       `json:"unlock_at"`
	LockAt            string       `json:"lock_at"`
	HTMLURL           string       `json:"html_url"`
	PointsPossible    *float64     `json:"points_possible"`
	SubmissionTypes   []string     `json:"submission_types"`
	AllowedExtensions []string     `json:"allowed_extensions"`
	Attachments       []Attachment `json:"attachments"`
}

// Attachment is a file attached to an assignment.
type Attachment struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

func New(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Self fetches the authenticated user's profile. A failure here means the
// session is unusable and callers should abort the run.
func (c *Client) Self(ctx context.Context) (*User, error) {
	var user User
	if _, err := c.get(ctx, c.baseURL+"/api/v1/users/self", &user); err != nil {
		return nil, fmt.Errorf("canvas identity check: %w", err)
	}
	return &user, nil
}

// ActiveCourses lists courses with an active enrollment, following
// pagination until exhausted.
func (c *Client) ActiveCourses(ctx context.Context) ([]Course, error) {
	u := c.baseURL + "/api/v1/courses?" + url.Values{
		"enrollment_state": {"active"},
		"per_page":         {"50"},
	}.Encode()

	var courses []Course
	for u != "" {
		var page []Course
		next, err := c.get(ctx, u, &page)
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		courses = append(courses, page...)
		u = next
	}
	return courses, nil
}

// Assignments lists a course's assignments including descriptions and
// attachments, following pagination until exhausted.
func (c *Client) Assignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	u := fmt.Sprintf("%s/api/v1/courses/%d/assignments?", c.baseURL, courseID) + url.Values{
		"include[]": {"description", "attachments"},
		"per_page":  {"50"},
	}.Encode()

	var assignments []Assignment
	for u != "" {
		var page []Assignment
		next, err := c.get(ctx, u, &page)
		if err != nil {
			return nil, fmt.Errorf("list assignments for course %d: %w", courseID, err)
		}
		assignments = append(assignments, page...)
		u = next
	}
	return assignments, nil
}

// Assignment fetches a single assignment with full detail.
func (c *Client) Assignment(ctx context.Context, courseID, assignmentID int64) (*Assignment, error) {
	u := fmt.Sprintf("%s/api/v1/courses/%d/assignments/%d?", c.baseURL, courseID, assignmentID) + url.Values{
		"include[]": {"description", "attachments", "submission"},
	}.Encode()

	var a Assignment
	if _, err := c.get(ctx, u, &a); err != nil {
		return nil, fmt.Errorf("fetch assignment %d: %w", assignmentID, err)
	}
	return &a, nil
}

// Course fetches a single course, used when building a detail view from
// bare identifiers.
func (c *Client) Course(ctx context.Context, courseID int64) (*Course, error) {
	var course Course
	u := fmt.Sprintf("%s/api/v1/courses/%d", c.baseURL, courseID)
	if _, err := c.get(ctx, u, &course); err != nil {
		return nil, fmt.Errorf("fetch course %d: %w", courseID, err)
	}
	return &course, nil
}

// get performs one authenticated GET, decodes the JSON body into out and
// returns the rel="next" pagination URL if the response carries one.
func (c *Client) get(ctx context.Context, rawURL string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("canvas API %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" URL from an RFC 5988 Link header.
// Returns "" when there is no next page.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		u := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return u
			}
		}
	}
	return ""
}
