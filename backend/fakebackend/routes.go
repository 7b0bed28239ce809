package fakebackend

import (
	"net/http"

	"github.com/jrsteele09/go-mindcare-client/backend"
)

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()

	b.handle(mux, "POST "+backend.LoginPath, b.login)
	b.handle(mux, "GET "+backend.VerifyPath, b.verify)
	b.handle(mux, "POST "+backend.RegisterPath, b.register)
	b.handle(mux, "GET "+backend.HealthPath, b.health)

	b.handle(mux, "GET "+backend.ResourcesPath, b.listResources)
	b.handle(mux, "GET "+backend.ResourcesPath+"/categories", b.resourceCategories)
	b.handle(mux, "GET "+backend.ResourcesPath+"/{id}", b.getResource)
	b.handle(mux, "POST "+backend.ResourcesPath, b.createResource)
	b.handle(mux, "PUT "+backend.ResourcesPath+"/{id}", b.updateResource)
	b.handle(mux, "DELETE "+backend.ResourcesPath+"/{id}", b.deleteResource)

	b.handle(mux, "GET "+backend.TherapistsPath, b.listTherapists)
	b.handle(mux, "GET "+backend.TherapistsPath+"/{id}", b.getTherapist)
	b.handle(mux, "POST "+backend.TherapistsPath, b.createTherapist)
	b.handle(mux, "PUT "+backend.TherapistsPath+"/{id}", b.updateTherapist)
	b.handle(mux, "DELETE "+backend.TherapistsPath+"/{id}", b.deleteTherapist)

	b.handle(mux, "GET "+backend.UsersPath, b.listAccounts)
	b.handle(mux, "GET "+backend.UsersPath+"/{id}", b.getAccount)
	b.handle(mux, "POST "+backend.UsersPath, b.createAccount)
	b.handle(mux, "PUT "+backend.UsersPath+"/{id}", b.updateAccount)
	b.handle(mux, "DELETE "+backend.UsersPath+"/{id}", b.deleteAccount)

	b.handle(mux, "POST "+backend.MoodPath+"/log", b.logMood)
	b.handle(mux, "GET "+backend.MoodPath+"/entries", b.moodEntries)
	b.handle(mux, "GET "+backend.MoodPath+"/stats", b.moodStats)
	b.handle(mux, "GET "+backend.MoodPath+"/chart", b.moodChart)

	b.handle(mux, "POST "+backend.ChatPath, b.chat)
	return mux
}
