package orchestrators

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"carpa/internal/domain/booking"
	"carpa/internal/domain/timetable"
)

var weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var months = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
	"agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// LongDate renders a booking date the way members read it, e.g. "martes 4 de junio".
// Unparseable dates are returned as given.
func LongDate(date string) string {
	t, err := booking.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d de %s", weekdays[t.Weekday()], t.Day(), months[t.Month()-1])
}

// SlotRange returns "6:30 - 7:20" for a slot label, or the label itself if unknown.
func SlotRange(slot string) string {
	for _, s := range timetable.Sessions {
		if s.Slot == slot {
			return s.Range()
		}
	}
	return slot
}

var mailTemplates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"longDate":  LongDate,
	"slotRange": SlotRange,
}).Parse(`
{{define "booked"}}<p>Hola {{.Name}},</p>
<p>Tu plaza está reservada para el <strong>{{longDate .Date}}</strong> de {{slotRange .Slot}}.</p>
<p>Si no puedes venir, cancela la reserva desde el horario para liberar la plaza.</p>
<p>Nos vemos en La Carpa Sports.</p>{{end}}
{{define "cancelled"}}<p>Hola {{.Name}},</p>
<p>Hemos cancelado tu reserva del <strong>{{longDate .Date}}</strong> de {{slotRange .Slot}}.</p>
<p>Puedes volver a reservar cuando quieras desde el horario.</p>{{end}}
{{define "reminder"}}<p>Hola {{.Name}},</p>
<p>Mañana, {{longDate .Date}}, tienes {{if eq (len .Slots) 1}}esta clase reservada{{else}}estas clases reservadas{{end}}:</p>
<ul>{{range .Slots}}<li>{{slotRange .}}</li>{{end}}</ul>
<p>¡Te esperamos!</p>{{end}}
`))

type mailData struct {
	Name  string
	Date  string
	Slot  string
	Slots []string
}

func renderMail(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
