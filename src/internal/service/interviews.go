package service

import (
	"context"
	"time"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

const (
	keyInvitation = "notifications.interviewInvitation"
	keyAccepted   = "notifications.interviewAccepted"
	keyDeclined   = "notifications.interviewDeclined"
)

func (s *Service) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	list, err := s.repo.ListInterviews(ctx)
	return list, s.fail(err, "interviews")
}

func (s *Service) ListInterviewsByJob(ctx context.Context, jobID string) ([]model.Interview, error) {
	list, err := s.repo.ListInterviewsByJob(ctx, jobID)
	return list, s.fail(err, "interviews")
}

func (s *Service) ListInterviewsByCandidate(ctx context.Context, studentID string) ([]model.Interview, error) {
	list, err := s.repo.ListInterviewsByCandidate(ctx, studentID)
	return list, s.fail(err, "interviews")
}

func (s *Service) GetInterview(ctx context.Context, id string) (model.Interview, error) {
	i, err := s.repo.GetInterview(ctx, id)
	if err != nil {
		return model.Interview{}, s.fail(err, "interview")
	}
	return i, nil
}

// ScheduleInterview creates a Pending interview for an existing job and
// candidate. The company comes from the job. The candidate's user, when one
// exists, gets an invitation notification.
func (s *Service) ScheduleInterview(ctx context.Context, jobID, candidateID string, at time.Time, location string) (model.Interview, error) {
	if jobID == "" || candidateID == "" || at.IsZero() {
		return model.Interview{}, invalid("jobId, candidateId and scheduledTime required")
	}
	s.log.Debug("ScheduleInterview: start", zap.String("job", jobID), zap.String("candidate", candidateID))
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return model.Interview{}, s.fail(err, "job")
	}
	candidate, err := s.repo.GetStudent(ctx, candidateID)
	if err != nil {
		return model.Interview{}, s.fail(err, "candidate")
	}

	var persistErr error
	created, err := s.repo.CreateInterview(ctx, model.Interview{
		JobID:         job.ID,
		CandidateID:   candidate.ID,
		CompanyName:   job.CompanyName,
		ScheduledTime: at.UTC(),
		Location:      location,
		Status:        model.InterviewPending,
	})
	if err := keepPersist(&persistErr, err); err != nil {
		return model.Interview{}, s.fail(err, "interview")
	}

	if u, ok, ferr := s.repo.FindUserByEmail(ctx, candidate.Email); ferr != nil {
		s.log.Warn("ScheduleInterview: candidate lookup failed", zap.Error(ferr))
	} else if ok {
		s.notify(ctx, model.Notification{
			UserID:      u.ID,
			TitleKey:    keyInvitation + ".title",
			MessageKey:  keyInvitation + ".message",
			InterviewID: created.ID,
			MessageParams: map[string]string{
				"companyName":   job.CompanyName,
				"jobTitle":      job.Title,
				"scheduledTime": created.ScheduledTime.Format(time.RFC3339),
			},
		})
	}
	s.log.Info("ScheduleInterview: success", zap.String("interview", created.ID))
	return created, s.fail(persistErr, "interview")
}

// RespondToInterview moves a Pending interview to Accepted or Declined and
// notifies the company user of the interview's company.
func (s *Service) RespondToInterview(ctx context.Context, id string, status model.InterviewStatus) (model.Interview, error) {
	if status != model.InterviewAccepted && status != model.InterviewDeclined {
		return model.Interview{}, invalid("response must be Accepted or Declined")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var persistErr error
	updated, err := s.repo.UpdateInterview(ctx, id, func(i model.Interview) (model.Interview, error) {
		if i.Status != model.InterviewPending {
			return i, conflict("interview is " + string(i.Status) + ", only Pending interviews can be answered")
		}
		i.Status = status
		return i, nil
	})
	if err := keepPersist(&persistErr, err); err != nil {
		return model.Interview{}, s.fail(err, "interview")
	}

	s.notifyCompany(ctx, updated)
	s.log.Info("RespondToInterview: success", zap.String("interview", id), zap.String("status", string(status)))
	return updated, s.fail(persistErr, "interview")
}

func (s *Service) notifyCompany(ctx context.Context, i model.Interview) {
	u, ok, err := s.repo.FindCompanyUser(ctx, i.CompanyName)
	if err != nil {
		s.log.Warn("notifyCompany: lookup failed", zap.String("company", i.CompanyName), zap.Error(err))
		return
	}
	if !ok {
		s.log.Debug("notifyCompany: no company user", zap.String("company", i.CompanyName))
		return
	}

	params := map[string]string{"scheduledTime": i.ScheduledTime.Format(time.RFC3339)}
	if st, err := s.repo.GetStudent(ctx, i.CandidateID); err == nil {
		params["candidateName"] = st.Name
	}
	if job, err := s.repo.GetJob(ctx, i.JobID); err == nil {
		params["jobTitle"] = job.Title
	}

	key := keyAccepted
	if i.Status == model.InterviewDeclined {
		key = keyDeclined
	}
	s.notify(ctx, model.Notification{
		UserID:        u.ID,
		TitleKey:      key + ".title",
		MessageKey:    key + ".message",
		MessageParams: params,
		InterviewID:   i.ID,
	})
}

// CompleteInterview closes an interview from any state but Completed and
// records the evaluation, if given.
func (s *Service) CompleteInterview(ctx context.Context, id string, eval *model.Evaluation) (model.Interview, error) {
	if eval != nil && (eval.Score < 0 || eval.Score > 100) {
		return model.Interview{}, invalid("evaluation score must be between 0 and 100")
	}
	i, err := s.repo.UpdateInterview(ctx, id, func(i model.Interview) (model.Interview, error) {
		if i.Status == model.InterviewCompleted {
			return i, conflict("interview already completed")
		}
		i.Status = model.InterviewCompleted
		if eval != nil {
			e := *eval
			i.Evaluation = &e
		}
		return i, nil
	})
	if err != nil {
		return i, s.fail(err, "interview")
	}
	return i, nil
}

func (s *Service) DeleteInterview(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.DeleteInterview(ctx, id)
	return ok, s.fail(err, "interview")
}
