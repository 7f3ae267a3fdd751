// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package i18n holds the message catalog for every user-visible string the
// lifecycle renderer and the widgets manager produce.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a catalog message.
type Key string

// Catalog keys.
const (
	DragDropTitle   Key = "install.dragdrop.title"
	DragDropBody    Key = "install.dragdrop.body"
	DragDropFormats Key = "install.dragdrop.formats"

	RemoveTitle Key = "remove.title"
	RemoveBody  Key = "remove.body"
	RemoveHint  Key = "remove.hint"

	InstallTitle Key = "install.title"
	InstallBody  Key = "install.body"
	InstallHint  Key = "install.hint"

	UpdateTitle    Key = "update.title"
	UpdateBody     Key = "update.body"
	ChangelogTitle Key = "update.changelog.title"

	RemovingTitle    Key = "removing.title"
	RemovingBody     Key = "removing.body"
	InstallingTitle  Key = "installing.title"
	InstallingBody   Key = "installing.body"
	DownloadingTitle Key = "downloading.title"
	DownloadingBody  Key = "downloading.body"

	ErrorTitle Key = "error.title"
	ErrorBody  Key = "error.body"

	RemovedTitle   Key = "removed.title"
	RemovedBody    Key = "removed.body"
	InstalledTitle Key = "installed.title"
	InstalledBody  Key = "installed.body"
	UpdatedTitle   Key = "updated.title"
	UpdatedBody    Key = "updated.body"

	ActionCancel      Key = "action.cancel"
	ActionChoose      Key = "action.choose"
	ActionRemove      Key = "action.remove"
	ActionInstall     Key = "action.install"
	ActionUpdate      Key = "action.update"
	ActionLater       Key = "action.later"
	ActionRemoving    Key = "action.removing"
	ActionInstalling  Key = "action.installing"
	ActionDownloading Key = "action.downloading"
	ActionClose       Key = "action.close"
	ActionRelaunch    Key = "action.relaunch"
	ActionReload      Key = "action.reload"

	ManagerSelectWidget    Key = "manager.select-widget"
	ManagerNoPreferences   Key = "manager.no-preferences"
	ManagerDidUpdate       Key = "manager.did-update"
	ManagerPlaceholder     Key = "manager.placeholder"
	ManagerNoWidgets       Key = "manager.no-widgets"
	ManagerUpdateAvailable Key = "manager.update-available"
	UnknownError           Key = "error.unknown"
)

var english = map[Key]string{
	DragDropTitle:   "Drop a widget here",
	DragDropBody:    "Drag a widget bundle onto this window, or choose one from disk.",
	DragDropFormats: "Valid formats: .pock bundles and archives",

	RemoveTitle: "Remove %s?",
	RemoveBody:  "%s will be removed from your widgets.",
	RemoveHint:  "Press Remove to continue.",

	InstallTitle: "Install %s?",
	InstallBody:  "%s will be added to your widgets.",
	InstallHint:  "Press Install to continue.",

	UpdateTitle:    "Update %s",
	UpdateBody:     "Version %s is installed. Version %s is available.",
	ChangelogTitle: "What's new",

	RemovingTitle:    "Removing %s",
	RemovingBody:     "Please wait while the widget is removed.",
	InstallingTitle:  "Installing %s",
	InstallingBody:   "Please wait while the widget is installed.",
	DownloadingTitle: "Downloading %s",
	DownloadingBody:  "The new version is being downloaded and installed.",

	ErrorTitle: "Error",
	ErrorBody:  "Something went wrong: %s",

	RemovedTitle:   "Widget removed",
	RemovedBody:    "%s has been removed. Relaunch to apply the change.",
	InstalledTitle: "Widget installed",
	InstalledBody:  "%s has been installed. Reload to start using it.",
	UpdatedTitle:   "Widget updated",
	UpdatedBody:    "%s has been updated. Relaunch to load the new version.",

	ActionCancel:      "Cancel",
	ActionChoose:      "Choose…",
	ActionRemove:      "Remove",
	ActionInstall:     "Install",
	ActionUpdate:      "Update",
	ActionLater:       "Later",
	ActionRemoving:    "Removing…",
	ActionInstalling:  "Installing…",
	ActionDownloading: "Downloading…",
	ActionClose:       "Close",
	ActionRelaunch:    "Relaunch",
	ActionReload:      "Reload",

	ManagerSelectWidget:    "Select a widget",
	ManagerNoPreferences:   "This widget has no preferences",
	ManagerDidUpdate:       "Widget updated. Relaunch to load its preferences",
	ManagerPlaceholder:     "--",
	ManagerNoWidgets:       "No widgets installed",
	ManagerUpdateAvailable: "Update available: %s",
	UnknownError:           "unknown error",
}

var italian = map[Key]string{
	DragDropTitle:   "Trascina qui un widget",
	DragDropBody:    "Trascina un bundle su questa finestra, oppure scegline uno dal disco.",
	DragDropFormats: "Formati validi: bundle e archivi .pock",

	RemoveTitle: "Rimuovere %s?",
	RemoveBody:  "%s verrà rimosso dai tuoi widget.",
	RemoveHint:  "Premi Rimuovi per continuare.",

	InstallTitle: "Installare %s?",
	InstallBody:  "%s verrà aggiunto ai tuoi widget.",
	InstallHint:  "Premi Installa per continuare.",

	UpdateTitle:    "Aggiorna %s",
	UpdateBody:     "È installata la versione %s. È disponibile la versione %s.",
	ChangelogTitle: "Novità",

	RemovingTitle:    "Rimozione di %s",
	RemovingBody:     "Attendi la rimozione del widget.",
	InstallingTitle:  "Installazione di %s",
	InstallingBody:   "Attendi l'installazione del widget.",
	DownloadingTitle: "Download di %s",
	DownloadingBody:  "La nuova versione è in fase di download e installazione.",

	ErrorTitle: "Errore",
	ErrorBody:  "Si è verificato un errore: %s",

	RemovedTitle:   "Widget rimosso",
	RemovedBody:    "%s è stato rimosso. Riavvia per applicare la modifica.",
	InstalledTitle: "Widget installato",
	InstalledBody:  "%s è stato installato. Ricarica per iniziare a usarlo.",
	UpdatedTitle:   "Widget aggiornato",
	UpdatedBody:    "%s è stato aggiornato. Riavvia per caricare la nuova versione.",

	ActionCancel:      "Annulla",
	ActionChoose:      "Scegli…",
	ActionRemove:      "Rimuovi",
	ActionInstall:     "Installa",
	ActionUpdate:      "Aggiorna",
	ActionLater:       "Più tardi",
	ActionRemoving:    "Rimozione…",
	ActionInstalling:  "Installazione…",
	ActionDownloading: "Download…",
	ActionClose:       "Chiudi",
	ActionRelaunch:    "Riavvia",
	ActionReload:      "Ricarica",

	ManagerSelectWidget:    "Seleziona un widget",
	ManagerNoPreferences:   "Questo widget non ha preferenze",
	ManagerDidUpdate:       "Widget aggiornato. Riavvia per caricarne le preferenze",
	ManagerPlaceholder:     "--",
	ManagerNoWidgets:       "Nessun widget installato",
	ManagerUpdateAvailable: "Aggiornamento disponibile: %s",
	UnknownError:           "errore sconosciuto",
}

var supported = []language.Tag{language.English, language.Italian} //nolint:gochecknoglobals

// Localizer formats catalog messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a localizer for the best supported match of lang.
// An empty or unparsable lang selects English.
func New(lang string) *Localizer {
	tag := language.English

	if lang = strings.TrimSpace(lang); lang != "" {
		if requested, err := language.Parse(lang); err == nil {
			_, index, confidence := language.NewMatcher(supported).Match(requested)
			if confidence != language.No {
				tag = supported[index]
			}
		}
	}

	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(buildCatalog())),
	}
}

// Default returns the English localizer.
func Default() *Localizer {
	return defaultLocalizer
}

var defaultLocalizer = New("en") //nolint:gochecknoglobals

// Tag returns the language this localizer renders.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T formats the message for key with args.
func (l *Localizer) T(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}

func buildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))

	for key, msg := range english {
		_ = builder.SetString(language.English, string(key), msg)
	}

	for key, msg := range italian {
		_ = builder.SetString(language.Italian, string(key), msg)
	}

	return builder
}
