//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the certifier is running$`, tc.certifierIsRunning)

	// Learner steps
	ctx.Step(`^I am signed in as "([^"]*)"$`, tc.signedInAs)
	ctx.Step(`^I am not signed in$`, tc.notSignedIn)
	ctx.Step(`^I request a certificate for course "([^"]*)"$`, tc.requestCertificate)
	ctx.Step(`^I request a certificate with an empty body$`, tc.requestWithEmptyBody)

	// Callback steps
	ctx.Step(`^the provider reports success for key "([^"]*)" user "([^"]*)" course "([^"]*)"$`, tc.reportSuccess)
	ctx.Step(`^the provider reports success as a form for key "([^"]*)" user "([^"]*)" course "([^"]*)"$`, tc.reportSuccessForm)
	ctx.Step(`^an unauthenticated caller reports success for key "([^"]*)"$`, tc.reportWithoutToken)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be one of "([^"]*)" or "([^"]*)"$`, tc.responseFieldShouldBeOneOf)
	ctx.Step(`^the response should not contain field "([^"]*)"$`, tc.responseShouldNotContainField)
}

func (tc *TestContext) certifierIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live", nil); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 200)
}

func (tc *TestContext) signedInAs(ctx context.Context, username string) error {
	return tc.SignInAs(username)
}

func (tc *TestContext) notSignedIn(ctx context.Context) error {
	tc.AccessToken = ""
	return nil
}

func (tc *TestContext) requestCertificate(ctx context.Context, courseID string) error {
	return tc.POST("/request_certificate", map[string]string{"course_id": courseID}, tc.AuthHeaders())
}

func (tc *TestContext) requestWithEmptyBody(ctx context.Context) error {
	return tc.POST("/request_certificate", map[string]string{}, tc.AuthHeaders())
}

func (tc *TestContext) callbackHeaders() map[string]string {
	if tc.CallbackToken == "" {
		return nil
	}
	return map[string]string{"X-Callback-Token": tc.CallbackToken}
}

func successEnvelope(key, username, courseID string) (header, body string) {
	h, _ := json.Marshal(map[string]string{"lms_key": key})
	b, _ := json.Marshal(map[string]string{
		"username":      username,
		"course_id":     courseID,
		"download_uuid": "e2e-download",
		"verify_uuid":   "e2e-verify",
		"url":           "https://credentials.example.com/e2e",
	})
	return string(h), string(b)
}

func (tc *TestContext) reportSuccess(ctx context.Context, key, username, courseID string) error {
	header, body := successEnvelope(key, username, courseID)
	envelope := map[string]json.RawMessage{
		"header": json.RawMessage(header),
		"body":   json.RawMessage(body),
	}
	return tc.POST("/update_certificate", envelope, tc.callbackHeaders())
}

func (tc *TestContext) reportSuccessForm(ctx context.Context, key, username, courseID string) error {
	header, body := successEnvelope(key, username, courseID)
	form := url.Values{"xqueue_header": {header}, "xqueue_body": {body}}
	return tc.POSTRaw("/update_certificate", "application/x-www-form-urlencoded", form.Encode(), tc.callbackHeaders())
}

func (tc *TestContext) reportWithoutToken(ctx context.Context, key string) error {
	if tc.CallbackToken == "" {
		// The server only checks callback tokens when CALLBACK_TOKEN_HASH is set.
		return godog.ErrSkip
	}
	header, body := successEnvelope(key, "alice", "course-v1:DemoX+CERT101+2026_T1")
	envelope := map[string]json.RawMessage{
		"header": json.RawMessage(header),
		"body":   json.RawMessage(body),
	}
	return tc.POST("/update_certificate", envelope, nil)
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if got := tc.GetLastResponseStatus(); got != expectedStatus {
		return fmt.Errorf("expected status %d but got %d", expectedStatus, got)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeOneOf(ctx context.Context, field, first, second string) error {
	actualValue, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if v := fmt.Sprint(actualValue); v != first && v != second {
		return fmt.Errorf("field %s: expected %s or %s but got %v", field, first, second, actualValue)
	}
	return nil
}

func (tc *TestContext) responseShouldNotContainField(ctx context.Context, field string) error {
	if _, err := tc.GetResponseField(field); err == nil {
		return fmt.Errorf("response unexpectedly contains field %s: %s", field, string(tc.LastResponseBody))
	}
	return nil
}
