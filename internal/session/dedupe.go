package session

import "github.com/AlvinSugijanto/job-scraper/internal/models"

// FilterNew returns the candidates whose ids are absent from existing.
// Collisions always favor the stored version; the caller never overwrites.
func FilterNew(candidates []models.Job, existing map[string]struct{}) []models.Job {
	fresh := make([]models.Job, 0, len(candidates))
	for _, job := range candidates {
		if _, ok := existing[job.ID]; ok {
			continue
		}
		fresh = append(fresh, job)
	}
	return fresh
}

func jobIDs(jobs []models.Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids
}
