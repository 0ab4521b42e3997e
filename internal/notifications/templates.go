package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// BookingDetails feeds the confirmation email.
type BookingDetails struct {
	BookingID  string
	ShowID     string
	MovieTitle string
	ShowTime   time.Time
	Seats      []string
	Amount     float64
	Currency   string
}

// ReminderDetails feeds the show reminder email.
type ReminderDetails struct {
	ShowID     string
	MovieTitle string
	ShowTime   time.Time
}

// NewShowDetails feeds the new movie announcement.
type NewShowDetails struct {
	MovieID    string
	MovieTitle string
	BookingURL string
}

const layoutOpen = `<div style="font-family: Arial, sans-serif; line-height: 1.6;">`
const layoutClose = `<p style="margin-top: 20px;">Best regards,<br>QuickTix Team</p></div>`

var emailTemplates = template.Must(template.New("emails").Funcs(template.FuncMap{
	"join":     strings.Join,
	"showtime": func(t time.Time) string { return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST") },
	"upper":    strings.ToUpper,
}).Parse(`
{{define "booking_confirmed"}}` + layoutOpen + `
<h2 style="color: #333;">Booking Confirmation</h2>
<p>Dear {{.Name}},</p>
<p>Thank you for booking your tickets with QuickTix!</p>
<ul>
  <li><strong>Movie:</strong> {{.Details.MovieTitle}}</li>
  <li><strong>Show Time:</strong> {{showtime .Details.ShowTime}}</li>
  <li><strong>Seats:</strong> {{join .Details.Seats ", "}}</li>
  <li><strong>Total:</strong> {{printf "%.2f" .Details.Amount}} {{upper .Details.Currency}}</li>
</ul>
<p>We hope you enjoy the show!</p>
` + layoutClose + `{{end}}
{{define "show_reminder"}}` + layoutOpen + `
<h2 style="color: #333;">Movie Reminder</h2>
<p>Dear {{.Name}},</p>
<p>Your movie <strong>{{.Details.MovieTitle}}</strong> is starting soon!</p>
<ul>
  <li><strong>Movie:</strong> {{.Details.MovieTitle}}</li>
  <li><strong>Show Time:</strong> {{showtime .Details.ShowTime}}</li>
</ul>
` + layoutClose + `{{end}}
{{define "new_show"}}` + layoutOpen + `
<h2 style="color: #333;">New Movie Released!</h2>
<p>Dear {{.Name}},</p>
<p><strong>{{.Details.MovieTitle}}</strong> is now available for booking on QuickTix.</p>
<a href="{{.Details.BookingURL}}" style="display: inline-block; padding: 10px 20px; background-color: #007bff; color: #fff; text-decoration: none; border-radius: 4px;">View Showtimes &amp; Book</a>
` + layoutClose + `{{end}}
`))

type templateData struct {
	Name    string
	Details interface{}
}

func render(name string, recipient Recipient, details interface{}) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, templateData{Name: recipient.Name, Details: details}); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// BookingConfirmedEmail renders the confirmation sent once a booking is paid.
func BookingConfirmedEmail(r Recipient, d BookingDetails) (*EmailNotification, error) {
	html, err := render("booking_confirmed", r, d)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Dear %s,\n\nYour booking for %s at %s is confirmed.\nSeats: %s\n\nQuickTix Team",
		r.Name, d.MovieTitle, d.ShowTime.UTC().Format(time.RFC1123), strings.Join(d.Seats, ", "))

	return NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithRecipient(r).
		WithContent(fmt.Sprintf("Payment Confirmation: %q Booked", d.MovieTitle), html, text).
		WithBookingContext(d.BookingID).
		WithShowContext(d.ShowID).
		Build(), nil
}

// ShowReminderEmail renders the reminder for an upcoming paid show.
func ShowReminderEmail(r Recipient, d ReminderDetails) (*EmailNotification, error) {
	html, err := render("show_reminder", r, d)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Dear %s,\n\n%s starts at %s.\n\nQuickTix Team",
		r.Name, d.MovieTitle, d.ShowTime.UTC().Format(time.RFC1123))

	return NewNotificationBuilder().
		WithType(NotificationTypeShowReminder).
		WithRecipient(r).
		WithContent(fmt.Sprintf("Reminder - Your Movie %s Starts Soon!", d.MovieTitle), html, text).
		WithShowContext(d.ShowID).
		Build(), nil
}

// NewShowEmail renders the announcement for a newly scheduled movie.
func NewShowEmail(r Recipient, d NewShowDetails) (*EmailNotification, error) {
	html, err := render("new_show", r, d)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Dear %s,\n\n%s is now available for booking: %s\n\nQuickTix Team",
		r.Name, d.MovieTitle, d.BookingURL)

	return NewNotificationBuilder().
		WithType(NotificationTypeNewShow).
		WithRecipient(r).
		WithContent(fmt.Sprintf("New Movie Added: %s", d.MovieTitle), html, text).
		Build(), nil
}
