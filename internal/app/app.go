package app

import (
	"intakeflow/internal/cache"
	"intakeflow/internal/repository"
)

type App struct {
	QuestionnaireRepo repository.QuestionnaireRepo
	SessionRepo       repository.SessionRepo
	SessionCache      cache.SessionCache
}
