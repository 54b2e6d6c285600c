package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/store"
)

type JobsCmd struct {
	List   JobsListCmd   `cmd:"" help:"List stored jobs."`
	Get    JobsGetCmd    `cmd:"" help:"Show one stored job."`
	Delete JobsDeleteCmd `cmd:"" help:"Delete one stored job."`
	Clear  JobsClearCmd  `cmd:"" help:"Delete all stored jobs."`
}

type JobsListCmd struct {
	Search string `help:"Filter by title, company or location."`
	Sort   string `help:"Sort column." enum:"created_at,title,company,location,salary,date_posted" default:"created_at"`
	Order  string `help:"Sort order." enum:"asc,desc" default:"desc"`
	Skip   int    `help:"Rows to skip."`
	Limit  int    `help:"Maximum rows." default:"50"`
	Format string `help:"Output format: csv, json, md, tsv, table." enum:",csv,json,md,tsv,table" default:""`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output string `name:"output" short:"o" help:"Write output to a file."`
	DB     string `help:"Database path override." env:"JOBSCRAPER_DB_PATH"`
}

type JobsGetCmd struct {
	ID string `arg:"" help:"Job id."`
	DB string `help:"Database path override." env:"JOBSCRAPER_DB_PATH"`
}

type JobsDeleteCmd struct {
	ID string `arg:"" help:"Job id."`
	DB string `help:"Database path override." env:"JOBSCRAPER_DB_PATH"`
}

type JobsClearCmd struct {
	DB string `help:"Database path override." env:"JOBSCRAPER_DB_PATH"`
}

func (c *JobsListCmd) Run(ctx *Context) error {
	st, err := openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	jobs, total, err := st.List(context.Background(), store.ListFilter{
		Search:    c.Search,
		SortBy:    c.Sort,
		SortOrder: c.Order,
		Offset:    c.Skip,
		Limit:     c.Limit,
	})
	if err != nil {
		return err
	}

	if err := writeResults(ctx, jobs, c.Format, c.Links, c.Output); err != nil {
		return err
	}
	if total > len(jobs) {
		ctx.UI.Warnf("Showing %d of %d stored jobs.", len(jobs), total)
	}
	return nil
}

func (c *JobsGetCmd) Run(ctx *Context) error {
	st, err := openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	job, err := st.Get(context.Background(), c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("job %s not found", c.ID)
	}
	if err != nil {
		return err
	}
	return writeResults(ctx, []models.Job{job}, "", "full", "")
}

func (c *JobsDeleteCmd) Run(ctx *Context) error {
	st, err := openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	err = st.Delete(context.Background(), c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("job %s not found", c.ID)
	}
	if err != nil {
		return err
	}
	ctx.UI.Successf("Deleted %s.", c.ID)
	return nil
}

func (c *JobsClearCmd) Run(ctx *Context) error {
	st, err := openStore(ctx, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.DeleteAll(context.Background())
	if err != nil {
		return err
	}
	ctx.UI.Successf("Deleted %d jobs.", n)
	return nil
}
