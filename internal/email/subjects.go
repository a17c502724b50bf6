package email

const (
	subjectNewInquiryFmt      = "New inquiry for %s"
	subjectInquiryReceivedFmt = "We received your inquiry about %s"
	subjectStatusChangeFmt    = "Update on your inquiry about %s"
	subjectOverdueReminderFmt = "%d inquiries are waiting for your response"
)
