package expense

import (
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/liveevents"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/repository"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(repository.Provide),
	fx.Provide(liveevents.NewHub),
	fx.Provide(service.NewClassifier),
	fx.Provide(service.New),
)
