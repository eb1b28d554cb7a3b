// Package atom implements the model optimization lifecycle behind
// automated model comparison: declarative hyperparameter search spaces,
// Bayesian optimization over cross-validated objectives, best-params
// refitting, bootstrap bagging and an aggregated results table.
//
// # Packages
//
//   - automl: the lifecycle runner, model registry and results table
//   - optimize: search spaces, the Gaussian Process surrogate and the
//     Bayesian optimization loop
//   - models: the built-in estimators (GNB, Ridge, KNN, Tree)
//   - metrics: named scorers including the confusion-matrix derivatives
//   - modelselection: cross-validation splitters and bootstrap resampling
//   - preprocessing, featureselection: the pre-training transformations
//   - plot: search-progress and model-comparison charts
//
// # Quick Start
//
// Train and compare two classifiers with Bayesian tuning:
//
//	runner := automl.NewRunner(nil, automl.RunConfig{
//	    Models:  []string{"KNN", "Tree"},
//	    Metrics: []string{"f1", "recall"},
//	    BO:      automl.BOConfig{NCalls: 20, NRandomStarts: 5, CV: 5},
//	    Bagging: automl.BaggingConfig{N: 10},
//	    Seed:    42,
//	}, nil)
//
//	outcome, err := runner.Run(ctx, automl.Dataset{
//	    XTrain: xTrain, YTrain: yTrain,
//	    XTest: xTest, YTest: yTest,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range outcome.Table.Rows() {
//	    fmt.Printf("%s: test %s = %.3f\n",
//	        row.Acronym, row.MetricNames[0], row.MetricTest[0])
//	}
//
// Data is passed as gonum matrices with targets as n-by-1 columns. Runs
// are reproducible for a fixed seed.
package atom
