package registration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseBody() []byte
	GetRegistrantID() string
	SetRegistrantID(registrantID string)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrationSteps{tc: tc}

	ctx.Step(`^I submit a registration for "([^"]*)" with email "([^"]*)" and payment option "([^"]*)"$`, steps.submit)
	ctx.Step(`^I save the registrant id$`, steps.saveRegistrantID)
	ctx.Step(`^I update the payment status for "([^"]*)" to "([^"]*)"$`, steps.updatePaymentStatus)
	ctx.Step(`^I fetch the saved registrant$`, steps.fetchSaved)
	ctx.Step(`^the updated user should have payment status "([^"]*)"$`, steps.updatedUserShouldHaveStatus)
	ctx.Step(`^the registered users list should have (\d+) entr(?:y|ies)$`, steps.listShouldHave)
}

type registrationSteps struct {
	tc TestContext
}

func (s *registrationSteps) submit(ctx context.Context, name, email, option string) error {
	return s.tc.POST("/submit-form", map[string]interface{}{
		"fullName":      name,
		"email":         email,
		"paymentOption": option,
	})
}

func (s *registrationSteps) saveRegistrantID(ctx context.Context) error {
	value, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	registrantID, ok := value.(string)
	if !ok || registrantID == "" {
		return fmt.Errorf("response id is not a string: %v", value)
	}
	s.tc.SetRegistrantID(registrantID)
	return nil
}

func (s *registrationSteps) updatePaymentStatus(ctx context.Context, email, status string) error {
	return s.tc.POST("/update-payment-status", map[string]interface{}{
		"email":         email,
		"paymentStatus": status,
	})
}

func (s *registrationSteps) fetchSaved(ctx context.Context) error {
	if s.tc.GetRegistrantID() == "" {
		return fmt.Errorf("no registrant id saved")
	}
	return s.tc.GET("/user/"+s.tc.GetRegistrantID(), nil)
}

func (s *registrationSteps) updatedUserShouldHaveStatus(ctx context.Context, expected string) error {
	value, err := s.tc.GetResponseField("user")
	if err != nil {
		return err
	}
	user, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("user is not an object: %v", value)
	}
	if user["paymentStatus"] != expected {
		return fmt.Errorf("expected payment status %s but got %v", expected, user["paymentStatus"])
	}
	return nil
}

func (s *registrationSteps) listShouldHave(ctx context.Context, expected int) error {
	if err := s.tc.GET("/registered-users", nil); err != nil {
		return err
	}
	var all []map[string]interface{}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &all); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(all) != expected {
		return fmt.Errorf("expected %d registrants but got %d", expected, len(all))
	}
	return nil
}
