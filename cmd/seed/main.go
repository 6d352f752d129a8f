package main

import (
	"encoding/json"
	"log"
	"os"

	"sparke-core-be/internal/model"
	"sparke-core-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

// Seeds a demo subject with one completed document so the search and insight
// endpoints have data to serve during local development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING is required")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	userId := uuid.New()
	if raw := os.Getenv("SEED_USER_ID"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			log.Fatalf("SEED_USER_ID is not a valid UUID: %v", err)
		}
		userId = parsed
	}

	subject := model.Subject{
		Id:     uuid.New(),
		Name:   "Demo Subject",
		UserId: userId,
	}
	if err := db.Create(&subject).Error; err != nil {
		log.Fatalf("Failed to seed subject: %v", err)
	}

	doc := model.Document{
		Id:         uuid.New(),
		SubjectId:  subject.Id,
		Filename:   "getting-started.md",
		StorageKey: "documents/" + userId.String() + "/" + subject.Id.String() + "/getting-started.md",
		Status:     "COMPLETED",
	}
	if err := db.Create(&doc).Error; err != nil {
		log.Fatalf("Failed to seed document: %v", err)
	}

	chunks := []model.DocumentChunk{
		{Id: uuid.New(), DocumentId: doc.Id, ChunkIndex: 0, Text: "Upload a document to have the engine extract and index its text."},
		{Id: uuid.New(), DocumentId: doc.Id, ChunkIndex: 1, Text: "Search runs over embedded chunks; results fall back to document order when nothing ranks."},
	}
	if err := db.Create(&chunks).Error; err != nil {
		log.Fatalf("Failed to seed chunks: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{"summary": "Seeded demo analysis."})
	analysis := model.AnalysisResult{
		Id:            uuid.New(),
		DocumentId:    doc.Id,
		EngineVersion: "seed",
		ResultPayload: datatypes.JSON(payload),
	}
	if err := db.Create(&analysis).Error; err != nil {
		log.Fatalf("Failed to seed analysis result: %v", err)
	}

	log.Printf("Seeded subject %s for user %s with document %s", subject.Id, userId, doc.Id)
}
