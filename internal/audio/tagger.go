package audio

import (
	"os"

	"github.com/bogem/id3v2"
	"github.com/handiism/xenocanto-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with catalogue data.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// This allows fine-grained control over which tags are modified
// when processing downloaded recordings.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Title:      TagModify,      // "Eurasian Wren (XC694038)"
//	    Artist:     TagModify,      // Recordist name
//	    Album:      TagModify,      // Scientific species name
//	    Genre:      TagModify,      // Animal group
//	    Date:       TagModify,      // Recording date
//	    Comments:   TagDoNotModify, // Keep existing comments
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Artist controls the TPE1 (Lead artist) frame, the recordist.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame, used here for the
	// scientific species name so players group recordings by species.
	Album TagEditAction

	// Genre controls the TCON (Content type) frame, the animal group.
	Genre TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// Comments controls the COMM (Comments) frame, filled from the
	// recordist's remarks.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// By default every tag is set to TagModify, so downloaded files carry
// the catalogue metadata.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Title:      TagModify,
		Artist:     TagModify,
		Album:      TagModify,
		Genre:      TagModify,
		Year:       TagModify,
		Date:       TagModify,
		Comments:   TagModify,
	}
}

// Tagger writes ID3 tags to downloaded recordings.
//
// Tagger uses the id3v2 library to modify MP3 file metadata including:
//   - Title, Recordist, Species, Group
//   - Recording year and date
//   - Remarks as a comment
//   - Sonogram as attached picture
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After downloading a recording
//	err := tagger.SaveTags(path, rec, sonogramBytes)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags for a recording to the file at path.
//
// This method:
//  1. Opens the existing MP3 file (or creates empty tags if none exist)
//  2. Updates string tags based on TagConfig settings
//  3. Embeds the sonogram if image bytes are provided
//  4. Saves the modified tags to the file
//
// Parameters:
//   - path: The downloaded MP3 file
//   - rec: The recording the file belongs to
//   - sonogram: JPEG image bytes for the picture frame (nil to skip)
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, rec *model.Recording, sonogram []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		// If file doesn't have tags, create new
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, rec)
	}

	if sonogram != nil {
		t.updateSonogram(tag, sonogram)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, rec *model.Recording) {
	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(rec.Title() + " (" + rec.CatalogueNumber() + ")")
	}

	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(rec.Recordist)
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(rec.Binomial())
	}

	// Genre (TCON)
	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(rec.Group)
	}

	// Year (TYER) - ID3v2.3
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if !rec.Date.IsZero() {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, rec.Date.Format("2006"))
		}
	}

	// Date (TDRC) - ID3v2.4
	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if !rec.Date.IsZero() {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, rec.Date.Format("2006-01-02"))
		}
	}

	// Comments (COMM)
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if rec.Remarks != "" {
			comment := id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        rec.Remarks,
			}
			tag.AddCommentFrame(comment)
		}
	}
}

// updateSonogram embeds the sonogram as an attached picture frame.
func (t *Tagger) updateSonogram(tag *id3v2.Tag, sonogram []byte) {
	// Remove any existing pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Sonogram",
		Picture:     sonogram,
	}
	tag.AddAttachedPicture(pic)
}
