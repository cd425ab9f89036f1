// Package responses holds the response classes a turn can produce and the
// table that maps each class to the words actually spoken.
package responses

// Class names one kind of spoken response. Handlers pick a Class; the Table
// decides the wording.
type Class string

const (
	Launch                Class = "launch"
	MenuFull              Class = "menu_full"
	MenuShort             Class = "menu_short"
	StartWriting          Class = "start_writing"
	FragmentAcknowledged  Class = "fragment_acknowledged"
	NoteSaved             Class = "note_saved"
	NothingSaid           Class = "nothing_said"
	NotCurrentlyWriting   Class = "not_currently_writing"
	PendingNote           Class = "pending_note"
	PendingNoteSend       Class = "pending_note_send"
	WritingInProgress     Class = "writing_in_progress"
	NoNotes               Class = "no_notes"
	ReadNotes             Class = "read_notes"
	ReadNotesPrefix       Class = "read_notes_prefix"
	NoteFormat            Class = "note_format"
	EmailNoteFormat       Class = "email_note_format"
	EmailSent             Class = "email_sent"
	PermissionNeeded      Class = "permission_needed"
	EmailNotFound         Class = "email_not_found"
	NoNotesToSend         Class = "no_notes_to_send"
	EmailTransportError   Class = "email_transport_error"
	NoTransportConfigured Class = "no_transport_configured"
	EmailSubject          Class = "email_subject"
	EmailBodyPrefix       Class = "email_body_prefix"
	Help                  Class = "help"
	NotUnderstood         Class = "not_understood"
	Goodbye               Class = "goodbye"
	Closed                Class = "closed"
	Error                 Class = "error"
)

// defaults is the stock Italian wording. ReadNotes and Closed are assembled
// or silent and have no entry.
var defaults = map[Class]string{
	Launch:                "Ciao, cosa vuoi fare? Scrivi, Rileggi, Invia o Chiudi?",
	MenuFull:              "Cosa vuoi fare ora? Scrivi, Rileggi, Invia o Chiudi?",
	MenuShort:             "Cosa vuoi fare?",
	StartWriting:          "Dimmi pure.",
	FragmentAcknowledged:  "Ricevuto. Altro?",
	NoteSaved:             "Salvato. Cosa vuoi fare ora? Scrivi, Rileggi, Invia o Chiudi?",
	NothingSaid:           "Non hai detto nulla. Cosa vuoi fare ora?",
	NotCurrentlyWriting:   "Non stavo scrivendo. Cosa vuoi fare? Scrivi, Rileggi, Invia o Chiudi?",
	PendingNote:           "Hai una nota in sospeso. Di 'Fine' per salvarla, o continua a dettare.",
	PendingNoteSend:       "Hai una nota in sospeso. Di 'Fine' per salvarla prima di inviare.",
	WritingInProgress:     "Stai scrivendo. Di 'Fine' quando hai finito.",
	NoNotes:               "Non hai ancora salvato nessuna nota. Cosa vuoi fare?",
	ReadNotesPrefix:       "Ecco le tue ultime note: ",
	NoteFormat:            "Nota {num} del {date}: {content}",
	EmailNoteFormat:       "{num}. [{date}] {content}",
	EmailSent:             "Email inviata. Cosa vuoi fare ora? Scrivi, Rileggi, Invia o Chiudi?",
	PermissionNeeded:      "Per inviare le note, ho bisogno del permesso di accedere alla tua email. Ho inviato una scheda alla tua app Alexa. Per favore abilita i permessi nelle impostazioni.",
	EmailNotFound:         "Non riesco a trovare il tuo indirizzo email. Controlla le impostazioni.",
	NoNotesToSend:         "Non ci sono note da inviare.",
	EmailTransportError:   "C'è stato un errore nell'invio dell'email.",
	NoTransportConfigured: "Errore di configurazione del server email.",
	EmailSubject:          "Le tue note Alexa",
	EmailBodyPrefix:       "Ecco le tue note:\n\n",
	Help:                  "Puoi dirmi di scrivere una nota o di rileggere le tue note. Cosa vuoi fare?",
	NotUnderstood:         "Non ho capito. Vuoi scrivere, rileggere o inviare?",
	Goodbye:               "Arrivederci!",
	Error:                 "Scusa, ho avuto un problema. Riprova.",
}

// Known reports whether c has configurable wording.
func Known(c Class) bool {
	_, ok := defaults[c]
	return ok
}
