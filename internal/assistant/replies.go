package assistant

var greetings = map[Channel]string{
	ChannelDoctor: "Hello, I'm your doctor. How can I help you?",
	ChannelAI:     "Hi 👋 I'm your AI health assistant.",
}

var cannedReplies = map[Channel]string{
	ChannelDoctor: "I understand. Please monitor your symptoms.",
	ChannelAI:     "Thanks for sharing. Stay healthy and monitor vitals.",
}

var gratitudeReplies = map[Channel]string{
	ChannelDoctor: "You're welcome. Keep logging your vitals and reach out any time.",
	ChannelAI:     "Happy to help! Remember to log your vitals today.",
}

var documentAcks = map[Channel]string{
	ChannelDoctor: "I've received your document. I'll review it.",
	ChannelAI:     "I've received the PDF. I can help analyze it.",
}

const (
	dangerPreface = "Thank you for telling me."
	urgentAdvice  = "This can be a danger sign in pregnancy. Contact your doctor or go to the nearest hospital now."
	routineAdvice = "Please contact your healthcare provider today and keep monitoring."
)
