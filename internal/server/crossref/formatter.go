// Package crossref renders published articles as Crossref journal-article
// deposit XML (schema 5.3.1) for DOI registration.
package crossref

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/config"
	"github.com/meridianpress/newsdesk/internal/server/users"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

// FormatType names this formatter; it doubles as the publish sequence
// subscriber key.
const FormatType = "crossref"

const (
	schemaNS       = "http://www.crossref.org/schema/5.3.1"
	schemaVersion  = "5.3.1"
	schemaLocation = "http://www.crossref.org/schema/5.3.1 https://www.crossref.org/schemas/crossref5.3.1.xsd"
	xsiNS          = "http://www.w3.org/2001/XMLSchema-instance"
	jatsNS         = "http://www.ncbi.nlm.nih.gov/JATS1"
	fundrefNS      = "http://www.crossref.org/fundref.xsd"
	mathmlNS       = "http://www.w3.org/1998/Math/MathML"
)

// CodeMetadataFailed is the numbered error raised when deposit metadata
// cannot be generated.
const CodeMetadataFailed = 25000

// FormatterError wraps the cause of a failed export with its error code.
type FormatterError struct {
	Code int
	err  error
}

func (e *FormatterError) Error() string {
	return fmt.Sprintf("formatter error %d: failed to generate article metadata for Crossref: %v", e.Code, e.err)
}

func (e *FormatterError) Unwrap() error {
	return e.err
}

// UserDirectory resolves article authors to user records for contributor
// names.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*users.User, error)
}

// Sequencer assigns publish sequence numbers per subscriber.
type Sequencer interface {
	NextPublishSequence(ctx context.Context, subscriber string) (int, error)
}

// Formatter renders deposit XML. It is stateless apart from its lookups; a
// single instance serves concurrent exports.
type Formatter struct {
	users     UserDirectory
	sequencer Sequencer
	vocab     *vocab.Vocab
	cfg       *config.Config
	logger    logging.Logger

	now func() time.Time
}

func NewFormatter(directory UserDirectory, sequencer Sequencer, v *vocab.Vocab, cfg *config.Config, logger logging.Logger) *Formatter {
	return &Formatter{
		users:     directory,
		sequencer: sequencer,
		vocab:     v,
		cfg:       cfg,
		logger:    logger.With("module", "crossref"),
		now:       time.Now,
	}
}

// CanFormat reports whether the item is eligible for Crossref deposit.
// Only text articles carry DOIs.
func (f *Formatter) CanFormat(item *archive.Item) bool {
	return item.Type == archive.TypeText
}

// Format renders the deposit document for item and assigns it the next
// publish sequence number for the crossref subscriber. Any failure is
// wrapped in a FormatterError.
func (f *Formatter) Format(ctx context.Context, item *archive.Item) (int, string, error) {
	seq, err := f.sequencer.NextPublishSequence(ctx, FormatType)
	if err != nil {
		return 0, "", &FormatterError{Code: CodeMetadataFailed, err: err}
	}

	out, err := f.render(ctx, item)
	if err != nil {
		return 0, "", err
	}
	return seq, out, nil
}

// Export renders the document without involving a real subscriber: editor
// downloads must not consume deposit sequence numbers. Non-text items are
// rejected.
func (f *Formatter) Export(ctx context.Context, item *archive.Item) (string, error) {
	if !f.CanFormat(item) {
		return "", common.BadRequest("only text items can be exported to Crossref")
	}
	out, err := f.render(ctx, item)
	if err != nil {
		return "", err
	}
	// the editor escapes apostrophes in headline text
	return strings.ReplaceAll(out, "''", "'"), nil
}

func (f *Formatter) render(ctx context.Context, item *archive.Item) (string, error) {
	doc, err := f.buildDocument(ctx, item)
	if err != nil {
		return "", &FormatterError{Code: CodeMetadataFailed, err: err}
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", &FormatterError{Code: CodeMetadataFailed, err: err}
	}
	return out, nil
}

func (f *Formatter) buildDocument(ctx context.Context, item *archive.Item) (*etree.Document, error) {
	doc := etree.NewDocument()
	// canonical text keeps apostrophes literal instead of &apos;
	doc.WriteSettings.CanonicalText = true
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	batch := doc.CreateElement("doi_batch")
	batch.CreateAttr("xmlns", schemaNS)
	batch.CreateAttr("xmlns:xsi", xsiNS)
	batch.CreateAttr("xmlns:jats", jatsNS)
	batch.CreateAttr("xmlns:fr", fundrefNS)
	batch.CreateAttr("xmlns:mml", mathmlNS)
	batch.CreateAttr("xsi:schemaLocation", schemaLocation)
	batch.CreateAttr("version", schemaVersion)

	f.buildHead(batch, item)

	language := item.Language
	if language == "" {
		language = "en"
	}

	body := batch.CreateElement("body")
	journal := body.CreateElement("journal")

	meta := journal.CreateElement("journal_metadata")
	meta.CreateAttr("language", language)
	meta.CreateAttr("reference_distribution_opts", "any")
	meta.CreateElement("full_title").SetText(stripTags(item.Headline))
	buildArchiveLocations(meta)

	article := journal.CreateElement("journal_article")
	article.CreateAttr("language", language)
	article.CreateAttr("publication_type", "full_text")
	article.CreateAttr("reference_distribution_opts", "any")

	titles := article.CreateElement("titles")
	titles.CreateElement("title").SetText(stripTags(item.Headline))

	if err := f.buildContributors(ctx, article, item); err != nil {
		return nil, err
	}

	buildPublicationDate(article, item.PublishDate())
	buildArchiveLocations(article)
	f.buildDOIData(article, item)

	return doc, nil
}

func (f *Formatter) buildHead(batch *etree.Element, item *archive.Item) {
	head := batch.CreateElement("head")
	head.CreateElement("doi_batch_id").SetText(item.Extra.String("doi"))
	head.CreateElement("timestamp").SetText(f.now().UTC().Format("20060102150405"))
	depositor := head.CreateElement("depositor")
	depositor.CreateElement("depositor_name").SetText(f.cfg.DepositorName)
	depositor.CreateElement("email_address").SetText(f.cfg.DepositorEmail)
	head.CreateElement("registrant").SetText(f.cfg.Registrant)
}

// buildContributors emits one person_name per article author, in article
// order, the first marked sequence "first". A user record that simply does
// not exist degrades to empty name fields with a warning; any other lookup
// failure aborts the export.
func (f *Formatter) buildContributors(ctx context.Context, article *etree.Element, item *archive.Item) error {
	if len(item.Authors) == 0 {
		return nil
	}

	contributors := article.CreateElement("contributors")
	for n, author := range item.Authors {
		user, err := f.lookupAuthor(ctx, author)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			f.logger.Warn(ctx, "unknown contributor user",
				"item_id", item.ID, "author", author.Name, "parent", author.Parent)
			user = &users.User{}
		}

		sequence := "additional"
		if n == 0 {
			sequence = "first"
		}

		person := contributors.CreateElement("person_name")
		person.CreateAttr("sequence", sequence)
		person.CreateAttr("contributor_role", f.vocab.ContributorRole(author.Role))
		person.CreateElement("given_name").SetText(user.FirstName)
		person.CreateElement("surname").SetText(user.LastName)
	}
	return nil
}

// lookupAuthor resolves the author's user record by parent id, falling back
// to a display-name lookup for older items with no parent reference.
func (f *Formatter) lookupAuthor(ctx context.Context, author archive.Author) (*users.User, error) {
	if author.Parent == "" {
		return f.users.GetByDisplayName(ctx, author.Name)
	}
	id, err := uuid.Parse(author.Parent)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return f.users.GetByID(ctx, id)
}

func buildPublicationDate(article *etree.Element, published time.Time) {
	date := article.CreateElement("publication_date")
	date.CreateAttr("media_type", "online")
	date.CreateElement("month").SetText(published.Format("01"))
	date.CreateElement("day").SetText(published.Format("02"))
	date.CreateElement("year").SetText(published.Format("2006"))
}

func buildArchiveLocations(parent *etree.Element) {
	locations := parent.CreateElement("archive_locations")
	locations.CreateElement("archive").CreateAttr("name", "Internet Archive")
}

func (f *Formatter) buildDOIData(article *etree.Element, item *archive.Item) {
	doi := item.Extra.String("doi")
	data := article.CreateElement("doi_data")
	data.CreateElement("doi").SetText(doi)
	resource := data.CreateElement("resource")
	resource.CreateAttr("content_version", "vor")
	resource.CreateAttr("mime_type", "text/html")
	resource.SetText(f.cfg.PublicDOIURLPrefix + doi)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags reduces rich headline markup to plain text.
func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
