package comic

const (
	SegmentCount = 3
	PanelCount   = 6
)

type VideoRecord struct {
	URL             string `json:"url"`
	ID              string `json:"video_id"`
	Title           string `json:"title"`
	DurationSeconds *int   `json:"duration_seconds"`
	Channel         string `json:"channel"`
	ThumbnailURL    string `json:"thumbnail_url"`
	Transcript      string `json:"-"`
}

type ViralSegment struct {
	Rank              int    `json:"rank" jsonschema_description:"Rank 1 (best) to 3"`
	Score             int    `json:"score" jsonschema_description:"Viral potential from 0 to 100"`
	StartTime         string `json:"start_time" jsonschema_description:"Approximate start timestamp, e.g. 02:15"`
	EndTime           string `json:"end_time" jsonschema_description:"Approximate end timestamp"`
	ViralType         string `json:"viral_type" jsonschema_description:"emotional, surprising, quotable, controversial or funny"`
	Hook              string `json:"hook" jsonschema_description:"One-line hook that makes people stop scrolling"`
	Summary           string `json:"summary" jsonschema_description:"What happens in this moment"`
	TranscriptExcerpt string `json:"transcript_excerpt" jsonschema_description:"Quote from the transcript"`
}

type Selection struct {
	Rank   int    `json:"rank" jsonschema_description:"Rank of the segment chosen for the comic"`
	Reason string `json:"reason" jsonschema_description:"Why this segment was chosen"`
}

type ViralAnalysis struct {
	Segments []ViralSegment `json:"segments"`
	Selected Selection      `json:"selected"`
}

// SelectedSegment returns the segment the selection points at.
func (a *ViralAnalysis) SelectedSegment() (ViralSegment, bool) {
	for _, segment := range a.Segments {
		if segment.Rank == a.Selected.Rank {
			return segment, true
		}
	}
	return ViralSegment{}, false
}

type StoryboardPanel struct {
	PanelNumber      int    `json:"panel_number"`
	SceneDescription string `json:"scene_description" jsonschema_description:"Detailed visual description of the scene"`
	CharacterDetails string `json:"character_details" jsonschema_description:"Who appears, their look and expression"`
	Action           string `json:"action" jsonschema_description:"What happens in the panel"`
	Caption          string `json:"caption" jsonschema_description:"Caption text, 10 words or fewer"`
	VisualStyle      string `json:"visual_style" jsonschema_description:"Lighting, palette and mood"`
	Composition      string `json:"composition" jsonschema_description:"Camera angle and framing"`
}

type Storyboard struct {
	Title        string            `json:"title"`
	Style        string            `json:"style" jsonschema_description:"Art style for every panel"`
	Tone         string            `json:"tone" jsonschema_description:"Overall tone, e.g. inspiring or comedic"`
	Panels       []StoryboardPanel `json:"panels"`
	NarrativeArc string            `json:"narrative_arc" jsonschema_description:"How tension builds across the six panels"`
	Hashtags     []string          `json:"hashtags"`
	PostingTip   string            `json:"posting_tip" jsonschema_description:"When and where to post"`
}

type GeneratedPanel struct {
	PanelNumber int    `json:"panel_number"`
	Caption     string `json:"caption"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MIMEType    string `json:"mime_type,omitempty"`
	PromptUsed  string `json:"prompt_used,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (p GeneratedPanel) HasImage() bool {
	return p.ImageBase64 != ""
}

type GenerationResult struct {
	Title           string           `json:"title"`
	Style           string           `json:"style"`
	TotalPanels     int              `json:"total_panels"`
	GeneratedPanels []GeneratedPanel `json:"generated_panels"`
	SuccessCount    int              `json:"success_count"`
}

type PublishStatus string

const (
	PublishPreview PublishStatus = "preview"
	PublishSuccess PublishStatus = "success"
	PublishFailed  PublishStatus = "failed"
)

type PublishedDocument struct {
	Status         PublishStatus `json:"status"`
	DocID          string        `json:"doc_id,omitempty"`
	DocURL         *string       `json:"doc_url"`
	DriveFolderURL *string       `json:"drive_folder_url"`
	Preview        string        `json:"preview"`
	Error          string        `json:"error,omitempty"`
}

type MetricEntry struct {
	VideoRef        *int64  `json:"video_id"`
	StepName        string  `json:"step"`
	DurationSeconds float64 `json:"duration_seconds"`
	Success         bool    `json:"success"`
	ErrorMessage    *string `json:"error"`
}
