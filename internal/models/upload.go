package models

// Envelope is the unit of upload: one file plus its metadata. Built once
// per file and discarded after the transport encodes it.
type Envelope struct {
	UUID      string     `json:"uuid"`
	FilePath  string     `json:"filePath"`
	MimeType  string     `json:"mimeType"`
	Source    Provenance `json:"source"`
	ItemData  []byte     `json:"itemData"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

// UploadAck is the server's acknowledgement of a received upload.
type UploadAck struct {
	ID   int64  `json:"id"`
	UUID string `json:"uuid"`
}

// Folder describes the server-side folder an uploaded file was filed under.
type Folder struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Folder    *string `json:"folder,omitempty"`
	Subfolder *string `json:"subfolder,omitempty"`
}

// ImageFile is an image record returned by the list endpoint.
type ImageFile struct {
	ID       int64   `json:"id"`
	Folder   Folder  `json:"folder"`
	FileName string  `json:"fileName"`
	FileURL  string  `json:"fileUrl"`
	ThumbURL string  `json:"thumbUrl"`
	DataURL  *string `json:"dataUrl,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	Width    *int    `json:"width,omitempty"`
	Height   *int    `json:"height,omitempty"`
}

// DocumentFile is a pdf or text record returned by the list endpoint.
type DocumentFile struct {
	ID       int64   `json:"id"`
	Folder   Folder  `json:"folder"`
	FileName string  `json:"fileName"`
	FileURL  string  `json:"fileUrl"`
	DataURL  *string `json:"dataUrl,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
}

// AudioFile is an audio record returned by the list endpoint.
type AudioFile struct {
	ID         int64    `json:"id"`
	Folder     Folder   `json:"folder"`
	FileName   string   `json:"fileName"`
	FileURL    string   `json:"fileUrl"`
	DataURL    *string  `json:"dataUrl,omitempty"`
	MimeType   *string  `json:"mimeType,omitempty"`
	FormatName *string  `json:"formatName,omitempty"`
	Length     *float64 `json:"length,omitempty"`
	Bitrate    *int     `json:"bitrate,omitempty"`
}

// VideoFile is a video record returned by the list endpoint.
type VideoFile struct {
	ID         int64    `json:"id"`
	Folder     Folder   `json:"folder"`
	FileName   string   `json:"fileName"`
	FileURL    string   `json:"fileUrl"`
	DataURL    *string  `json:"dataUrl,omitempty"`
	MimeType   *string  `json:"mimeType,omitempty"`
	FormatName *string  `json:"formatName,omitempty"`
	Width      *int     `json:"width,omitempty"`
	Height     *int     `json:"height,omitempty"`
	Length     *float64 `json:"length,omitempty"`
	Bitrate    *int     `json:"bitrate,omitempty"`
}

// UploadWithFiles is one upload record from the list endpoint with its
// files grouped by category.
type UploadWithFiles struct {
	ID         int64          `json:"id"`
	UUID       string         `json:"uuid"`
	ImageFiles []ImageFile    `json:"imageFiles"`
	PdfFiles   []DocumentFile `json:"pdfFiles"`
	AudioFiles []AudioFile    `json:"audioFiles"`
	VideoFiles []VideoFile    `json:"videoFiles"`
	TextFiles  []DocumentFile `json:"textFiles"`
}

// Files holds every file of a set of uploads, grouped by category.
type Files struct {
	Images []ImageFile
	Pdfs   []DocumentFile
	Audio  []AudioFile
	Video  []VideoFile
	Text   []DocumentFile
}

// Len returns the total number of files across categories.
func (f Files) Len() int {
	return len(f.Images) + len(f.Pdfs) + len(f.Audio) + len(f.Video) + len(f.Text)
}

// FlattenFiles concatenates the per-category files of all uploads,
// preserving upload order.
func FlattenFiles(uploads []UploadWithFiles) Files {
	var f Files
	for _, u := range uploads {
		f.Images = append(f.Images, u.ImageFiles...)
		f.Pdfs = append(f.Pdfs, u.PdfFiles...)
		f.Audio = append(f.Audio, u.AudioFiles...)
		f.Video = append(f.Video, u.VideoFiles...)
		f.Text = append(f.Text, u.TextFiles...)
	}

	return f
}

// FolderIDsRequest is the body of the publish/unpublish endpoints.
type FolderIDsRequest struct {
	ID []int64 `json:"id"`
}

// StreamStatus reports whether the HLS playlist for a media file exists.
type StreamStatus struct {
	ID         int64 `json:"id"`
	M3U8Exists bool  `json:"m3u8Exists"`
}

// UploadUUIDsRequest is the body of the legacy list endpoint.
type UploadUUIDsRequest struct {
	UUIDs []string `json:"uuids"`
}
