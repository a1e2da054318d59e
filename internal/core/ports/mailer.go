package ports

// Mail is an outbound email job.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Mailer performs the actual delivery (SMTP).
type Mailer interface {
	Send(m Mail) error
}

// Notifier accepts mail jobs for asynchronous delivery so request paths
// never block on SMTP.
type Notifier interface {
	Enqueue(m Mail)
}
