package fallback

import (
	"github.com/themobileprof/momvitals-be/internal/classifier"
	"github.com/themobileprof/momvitals-be/internal/risk"
)

// Suggested client actions
const (
	ActionRetry          = "retry"
	ActionContactSupport = "contact_support"
	ActionEmergency      = "emergency"
)

// Response represents a fallback response
type Response struct {
	Content string `json:"content"`
	Action  string `json:"action"`
}

var intentFallbacks = map[classifier.Intent]Response{
	classifier.IntentSymptom: {
		Content: "I'm having trouble processing your message right now. If you're experiencing bleeding, severe pain, blurred vision or reduced baby movements, please contact your healthcare provider immediately or call emergency services.",
		Action:  ActionEmergency,
	},
	classifier.IntentVitals: {
		Content: "I couldn't check your readings right now. Please log them on the health form so your dashboard stays up to date.",
		Action:  ActionRetry,
	},
	classifier.IntentPregnancyQ: {
		Content: "I'm having a brief connection issue. If your question is urgent, please reach out to your healthcare provider.",
		Action:  ActionRetry,
	},
	classifier.IntentDocument: {
		Content: "I couldn't open that document just now. Please try uploading it again.",
		Action:  ActionRetry,
	},
	classifier.IntentSmallTalk: {
		Content: "I'm here! Having a small technical hiccup. How can I help you today?",
		Action:  ActionRetry,
	},
	classifier.IntentUnclear: {
		Content: "I'm having trouble understanding right now. Could you try rephrasing your question?",
		Action:  ActionRetry,
	},
}

var (
	timeoutResponse = Response{
		Content: "AI insights are taking longer than usual. Showing standard clinical guidance for your readings.",
		Action:  ActionRetry,
	}

	circuitOpenResponse = Response{
		Content: "AI insights are temporarily unavailable. Showing standard clinical guidance for your readings.",
		Action:  ActionContactSupport,
	}

	unavailableResponse = Response{
		Content: "AI insights could not be fetched right now. Showing standard clinical guidance for your readings.",
		Action:  ActionRetry,
	}

	invalidResponse = Response{
		Content: "AI insights could not be read this time. Showing standard clinical guidance for your readings.",
		Action:  ActionRetry,
	}

	// Appended whenever the deterministic assessment is an emergency
	emergencyResponse = Response{
		Content: "Your readings need urgent attention. Contact your doctor or go to the nearest emergency room now.",
		Action:  ActionEmergency,
	}
)

// GetFallbackResponse returns the reply used when the assistant cannot
// complete a request for the given intent
func GetFallbackResponse(intent classifier.Intent) Response {
	if response, ok := intentFallbacks[intent]; ok {
		return response
	}
	return Response{
		Content: "I'm sorry, I'm having technical difficulties. Please try again.",
		Action:  ActionRetry,
	}
}

// GetTimeoutResponse returns a timeout-specific fallback
func GetTimeoutResponse() Response {
	return timeoutResponse
}

// GetCircuitOpenResponse returns a circuit breaker open fallback
func GetCircuitOpenResponse() Response {
	return circuitOpenResponse
}

// GetUnavailableResponse is used when the provider call failed outright
func GetUnavailableResponse() Response {
	return unavailableResponse
}

// GetInvalidResponse is used when the provider answered with something unusable
func GetInvalidResponse() Response {
	return invalidResponse
}

// ForLevel escalates any fallback to the emergency notice when the
// assessment itself is critical
func ForLevel(base Response, level risk.Level) Response {
	if level == risk.LevelCritical {
		return emergencyResponse
	}
	return base
}

// IsEmergencyIntent checks if intent requires emergency handling
func IsEmergencyIntent(intent classifier.Intent) bool {
	return intent == classifier.IntentSymptom
}
