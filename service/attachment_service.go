package service

import (
	"context"
	"io"
	"log"
	"strings"

	"lexdesk-backend/ai"
	"lexdesk-backend/storage"
)

// Audio attachments are transcribed before prompting; the transcript is
// tagged so the model knows it is derived text, not the lawyer's own words.
const (
	audioTagCase   = "[Transcrição de áudio]: "
	audioTagReview = "[Documento transcrito]: "
)

// Chat grounds itself on at most this many knowledge documents to keep the
// digest call cheap.
const chatKnowledgeDocs = 3

// AttachmentService turns stored attachments into multimodal prompt parts.
// Per-file failures are skipped with a warning; one unreadable attachment
// never fails a whole stage.
type AttachmentService struct {
	storage storage.Storage
	client  MultimodalClient
}

// AttachmentServiceOption is a functional option for AttachmentService
type AttachmentServiceOption func(*AttachmentService)

// WithAttachmentStorage sets the blob storage backend
func WithAttachmentStorage(s storage.Storage) AttachmentServiceOption {
	return func(svc *AttachmentService) {
		svc.storage = s
	}
}

// WithAttachmentClient sets the multimodal client used for transcription and
// document digests
func WithAttachmentClient(c MultimodalClient) AttachmentServiceOption {
	return func(svc *AttachmentService) {
		svc.client = c
	}
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(opts ...AttachmentServiceOption) *AttachmentService {
	s := &AttachmentService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PrepareCaseFiles prepares petition case attachments: documents and images
// become inline parts, audio becomes a tagged transcript part.
func (s *AttachmentService) PrepareCaseFiles(ctx context.Context, paths []string) []ai.Part {
	return s.prepare(ctx, paths, audioTagCase)
}

// PrepareReviewFiles prepares judge-review attachments
func (s *AttachmentService) PrepareReviewFiles(ctx context.Context, paths []string) []ai.Part {
	return s.prepare(ctx, paths, audioTagReview)
}

// PrepareKnowledge prepares knowledge-base documents. Audio knowledge files
// are skipped outright; transcribing reference material is not worth a
// transcription call per prompt.
func (s *AttachmentService) PrepareKnowledge(ctx context.Context, paths []string) []ai.Part {
	var parts []ai.Part
	for _, path := range paths {
		mimeType := storage.ContentTypeFor(path)
		if strings.HasPrefix(mimeType, "audio/") {
			continue
		}
		data, err := s.download(ctx, path)
		if err != nil {
			log.Printf("Warning: failed to process KB file %s: %v", path, err)
			continue
		}
		parts = append(parts, ai.DataPart(mimeType, data))
	}
	return parts
}

func (s *AttachmentService) prepare(ctx context.Context, paths []string, audioTag string) []ai.Part {
	var parts []ai.Part
	for _, path := range paths {
		mimeType := storage.ContentTypeFor(path)

		data, err := s.download(ctx, path)
		if err != nil {
			log.Printf("Warning: failed to process file %s: %v", path, err)
			continue
		}

		if strings.HasPrefix(mimeType, "audio/") {
			transcript, err := s.client.Transcribe(ctx, data, mimeType)
			if err != nil {
				log.Printf("Warning: failed to transcribe %s: %v", path, err)
				continue
			}
			parts = append(parts, ai.TextPart(audioTag+transcript))
			continue
		}

		parts = append(parts, ai.DataPart(mimeType, data))
	}
	return parts
}

// FileDigest produces a text rendition of one attachment for chat context:
// a transcript for audio, a Portuguese summary for documents.
func (s *AttachmentService) FileDigest(ctx context.Context, path string) (string, error) {
	mimeType := storage.ContentTypeFor(path)

	data, err := s.download(ctx, path)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(mimeType, "audio/") {
		return s.client.Transcribe(ctx, data, mimeType)
	}

	return s.client.GenerateText(ctx, []ai.Part{
		ai.TextPart("Extraia e resuma o conteúdo deste documento em português:"),
		ai.DataPart(mimeType, data),
	})
}

// KnowledgeDigest summarizes up to chatKnowledgeDocs knowledge documents into
// one text block for the chat system context.
func (s *AttachmentService) KnowledgeDigest(ctx context.Context, paths []string) (string, error) {
	if len(paths) > chatKnowledgeDocs {
		paths = paths[:chatKnowledgeDocs]
	}

	parts := []ai.Part{
		ai.TextPart("Extraia o conteúdo relevante destes documentos da base de conhecimento do escritório, de forma resumida:"),
	}
	for _, path := range paths {
		mimeType := storage.ContentTypeFor(path)
		if strings.HasPrefix(mimeType, "audio/") {
			continue
		}
		data, err := s.download(ctx, path)
		if err != nil {
			continue
		}
		parts = append(parts, ai.DataPart(mimeType, data))
	}

	if len(parts) == 1 {
		return "", nil
	}

	return s.client.GenerateText(ctx, parts)
}

func (s *AttachmentService) download(ctx context.Context, path string) ([]byte, error) {
	reader, err := s.storage.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
