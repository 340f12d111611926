package notify

const (
	templateRequestReceived = "request_received"
	templateConfirmation    = "confirmation"
)

const requestReceivedSubject = `{{if .Emergency}}[EMERGENCY] {{end}}New appointment request from {{.PatientName}}`

const requestReceivedText = `A new appointment request was submitted to {{.PracticeName}}.

Name: {{.PatientName}}
Email: {{.Email}}
Phone: {{.Phone}}
Requested Appointment Date: {{.RequestedDate}}
Requested Appointment Time: {{.RequestedTime}}
Requested Appointment Type: {{.AppointmentType}}
{{if .Description}}Description: {{.Description}}
{{end}}Emergency: {{if .Emergency}}Yes{{else}}No{{end}}

Reply to this email to reach the patient directly.
`

const requestReceivedHTML = `<h2>New appointment request</h2>
<p>A new appointment request was submitted to {{.PracticeName}}.</p>
<ul>
<li>Name: {{.PatientName}}</li>
<li>Email: {{.Email}}</li>
<li>Phone: {{.Phone}}</li>
<li>Requested Appointment Date: {{.RequestedDate}}</li>
<li>Requested Appointment Time: {{.RequestedTime}}</li>
<li>Requested Appointment Type: {{.AppointmentType}}</li>
{{if .Description}}<li>Description: {{.Description}}</li>
{{end}}<li>Emergency: {{if .Emergency}}Yes{{else}}No{{end}}</li>
</ul>
`

const confirmationSubject = `Your {{.PracticeName}} appointment is confirmed`

const confirmationText = `Hi {{.FirstName}} {{.LastName}},

Your {{.AppointmentType}} appointment with {{.PracticeName}} is confirmed for {{.ScheduledDate}} at {{.ScheduledTime}}.
{{if .PracticePhone}}
If you need to change it, please call us at {{.PracticePhone}}.
{{end}}
See you soon,
{{.PracticeName}}
`

const confirmationHTML = `<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>Your {{.AppointmentType}} appointment with {{.PracticeName}} is confirmed for
<strong>{{.ScheduledDate}}</strong> at <strong>{{.ScheduledTime}}</strong>.</p>
{{if .PracticePhone}}<p>If you need to change it, please call us at {{.PracticePhone}}.</p>
{{end}}<p>See you soon,<br>{{.PracticeName}}</p>
`

type requestReceivedData struct {
	PracticeName    string
	PatientName     string
	Email           string
	Phone           string
	RequestedDate   string
	RequestedTime   string
	AppointmentType string
	Description     string
	Emergency       bool
}

type confirmationData struct {
	PracticeName    string
	PracticePhone   string
	FirstName       string
	LastName        string
	AppointmentType string
	ScheduledDate   string
	ScheduledTime   string
}
